package dataqa

import (
	"context"
	"errors"

	"github.com/siadai/siadchat/internal/table"
)

var ErrNotConfigured = errors.New("chave de API do modelo de linguagem não configurada")

// Unavailable stands in when no model credentials are configured; every
// question fails with Err.
type Unavailable struct {
	Err error
}

func (u Unavailable) Ask(context.Context, table.Table, string) (string, error) {
	if u.Err != nil {
		return "", u.Err
	}
	return "", ErrNotConfigured
}
