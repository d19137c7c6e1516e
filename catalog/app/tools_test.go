package app

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/config"
	"github.com/Astemirdum/library-catalog/catalog/internal/errs"
	"github.com/Astemirdum/library-catalog/catalog/internal/model"
	"github.com/Astemirdum/library-catalog/catalog/internal/repository"
)

func TestParseAuthorArgs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		args    []string
		want    model.CreateAuthorRequest
		wantErr error
		kind    errs.Kind
	}{
		{
			name: "all fields",
			args: []string{"Pablo Neruda", "neruda@example.com", "Poeta chileno", "Chileno", "1904"},
			want: model.CreateAuthorRequest{
				Name:        "Pablo Neruda",
				Email:       "neruda@example.com",
				Bio:         strPtr("Poeta chileno"),
				Nationality: strPtr("Chileno"),
				BirthYear:   intPtr(1904),
			},
		},
		{
			name: "required only",
			args: []string{"Pablo Neruda", "neruda@example.com"},
			want: model.CreateAuthorRequest{Name: "Pablo Neruda", Email: "neruda@example.com"},
		},
		{
			name:    "too few",
			args:    []string{"Pablo Neruda"},
			wantErr: ErrUsage,
		},
		{
			name: "bad year",
			args: []string{"Pablo Neruda", "neruda@example.com", "", "", "mil"},
			kind: errs.KindValidation,
		},
		{
			name: "bad email",
			args: []string{"Pablo Neruda", "neruda"},
			kind: errs.KindValidation,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAuthorArgs(tt.args)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.kind != errs.KindInternal:
				require.Error(t, err)
				require.Equal(t, tt.kind, errs.KindOf(err))
			default:
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAddAuthor(t *testing.T) {
	t.Parallel()
	log := zap.NewNop()
	req, err := ParseAuthorArgs([]string{"Octavio Paz", "paz@example.com", "", "Mexicano"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, addAuthor(context.Background(), repository.NewMemoryRepository(log), log, req, &out))

	var author model.Author
	require.NoError(t, json.Unmarshal(out.Bytes(), &author))
	require.NotEmpty(t, author.ID)
	require.Equal(t, "Octavio Paz", author.Name)
	require.Nil(t, author.Bio)
	require.Equal(t, strPtr("Mexicano"), author.Nationality)
}

func TestSeedStore(t *testing.T) {
	t.Parallel()
	log := zap.NewNop()
	res, err := seedStore(context.Background(), repository.NewMemoryRepository(log), log)
	require.NoError(t, err)
	require.Equal(t, 4, res.Authors)
	require.Equal(t, 5, res.Books)
}

func TestTools_RejectMemoryStore(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{Store: config.Store{Driver: config.DriverMemory}}

	_, err := Seed(context.Background(), cfg)
	require.ErrorIs(t, err, ErrMemoryStore)

	var out bytes.Buffer
	err = AddAuthor(context.Background(), cfg, []string{"Octavio Paz", "paz@example.com"}, &out)
	require.ErrorIs(t, err, ErrMemoryStore)
	require.Zero(t, out.Len())
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	t.Parallel()
	_, _, err := openStore(context.Background(), &config.Config{Store: config.Store{Driver: "sqlite"}}, nil)
	require.Error(t, err)
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
