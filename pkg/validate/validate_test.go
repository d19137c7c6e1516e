package validate_test

import (
	"testing"
	"time"

	"github.com/Astemirdum/library-catalog/pkg/validate"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Year  *int   `json:"year" validate:"omitempty,min=1000,notfuture"`
	Pages *int   `json:"pages" validate:"omitempty,gt=0"`
}

func intPtr(v int) *int { return &v }

func TestCustomValidator_Validate(t *testing.T) {
	t.Parallel()
	nextYear := time.Now().Year() + 1

	tests := []struct {
		name    string
		in      payload
		wantErr string
	}{
		{
			name: "ok",
			in:   payload{Name: "Jorge Luis Borges", Email: "borges@example.com", Year: intPtr(1944), Pages: intPtr(174)},
		},
		{
			name: "ok. optional fields absent",
			in:   payload{Name: "Julio Cortázar", Email: "cortazar@example.com"},
		},
		{
			name:    "err. required",
			in:      payload{Email: "borges@example.com"},
			wantErr: "name is required",
		},
		{
			name:    "err. email",
			in:      payload{Name: "Borges", Email: "borges"},
			wantErr: "email must be a valid email",
		},
		{
			name:    "err. year too old",
			in:      payload{Name: "Borges", Email: "borges@example.com", Year: intPtr(999)},
			wantErr: "year must be at least 1000",
		},
		{
			name:    "err. year in future",
			in:      payload{Name: "Borges", Email: "borges@example.com", Year: intPtr(nextYear)},
			wantErr: "year must not be in the future",
		},
		{
			name:    "err. pages",
			in:      payload{Name: "Borges", Email: "borges@example.com", Pages: intPtr(0)},
			wantErr: "pages must be greater than 0",
		},
		{
			name:    "err. several fields",
			in:      payload{},
			wantErr: "name is required; email is required",
		},
	}
	v := validate.NewCustomValidator()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
		})
	}
}
