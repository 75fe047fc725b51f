package flatten

import (
	"reflect"
	"testing"
)

func TestFlattenNestedObjectAndArray(t *testing.T) {
	record, err := FlattenJSON([]byte(`{"a": {"b": 1, "c": [2, 3]}}`))
	if err != nil {
		t.Fatalf("FlattenJSON() error = %v", err)
	}
	want := Record{"a_b": float64(1), "a_c_0": float64(2), "a_c_1": float64(3)}
	if !reflect.DeepEqual(record, want) {
		t.Fatalf("FlattenJSON() = %#v, want %#v", record, want)
	}
}

func TestFlattenEmptyContainersContributeNothing(t *testing.T) {
	record, err := FlattenJSON([]byte(`{"a": {}, "b": [], "c": {"d": []}, "e": "x"}`))
	if err != nil {
		t.Fatalf("FlattenJSON() error = %v", err)
	}
	want := Record{"e": "x"}
	if !reflect.DeepEqual(record, want) {
		t.Fatalf("FlattenJSON() = %#v, want %#v", record, want)
	}

	for _, raw := range []string{`{}`, `[]`} {
		record, err := FlattenJSON([]byte(raw))
		if err != nil {
			t.Fatalf("FlattenJSON(%s) error = %v", raw, err)
		}
		if len(record) != 0 {
			t.Fatalf("FlattenJSON(%s) = %#v, want empty", raw, record)
		}
	}
}

func TestFlattenRootScalarUsesEmptyKey(t *testing.T) {
	record := Flatten("hello")
	if len(record) != 1 || record[""] != "hello" {
		t.Fatalf("Flatten() = %#v", record)
	}
	record = Flatten(nil)
	value, ok := record[""]
	if !ok || value != nil {
		t.Fatalf("Flatten(nil) = %#v", record)
	}
}

func TestFlattenKeepsNullAndBoolLeaves(t *testing.T) {
	record, err := FlattenJSON([]byte(`{"dados": [{"id": 7, "ativo": true, "obs": null}]}`))
	if err != nil {
		t.Fatalf("FlattenJSON() error = %v", err)
	}
	want := Record{"dados_0_id": float64(7), "dados_0_ativo": true, "dados_0_obs": nil}
	if !reflect.DeepEqual(record, want) {
		t.Fatalf("FlattenJSON() = %#v, want %#v", record, want)
	}
}

func TestFlattenLeafCountMatchesScalars(t *testing.T) {
	record, err := FlattenJSON([]byte(`[[1, 2], {"x": [true, {"y": "z"}]}, null]`))
	if err != nil {
		t.Fatalf("FlattenJSON() error = %v", err)
	}
	if len(record) != 5 {
		t.Fatalf("len(record) = %d, want 5: %#v", len(record), record)
	}
	if record["1_x_1_y"] != "z" {
		t.Fatalf("record[1_x_1_y] = %#v", record["1_x_1_y"])
	}
}

func TestDecodeRejectsEmptyAndInvalid(t *testing.T) {
	if _, err := Decode([]byte("  ")); err == nil {
		t.Fatal("expected error for empty document")
	}
	if _, err := Decode([]byte("{")); err == nil {
		t.Fatal("expected error for invalid document")
	}
}
