package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertQuery(t *testing.T) {
	query, args, err := insertQuery("articles", []byte(`{"title":"x"}`))
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO articles (body) VALUES ($1::jsonb)", query)
	assert.Equal(t, []any{`{"title":"x"}`}, args)
}

func TestNew_TableName(t *testing.T) {
	tests := []struct {
		table   string
		want    string
		wantErr bool
	}{
		{"", DefaultTable, false},
		{"news_docs", "news_docs", false},
		{"articles; DROP TABLE x", "", true},
		{"1bad", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			store, err := New(nil, tt.table)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.table)
		})
	}
}

func TestCreateTableSQL(t *testing.T) {
	sql := createTableSQL("articles")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS articles")
	assert.Contains(t, sql, "body JSONB NOT NULL")
}

func TestConnect_RequiresDSN(t *testing.T) {
	_, err := Connect(context.Background(), "", "")
	assert.Error(t, err)
}
