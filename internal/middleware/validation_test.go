package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ProductID int64 `json:"produto_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantidade" validate:"gt=0"`
}

type testRequest struct {
	Name  string           `json:"nome" validate:"required,min=3,max=60"`
	Price decimal.Decimal  `json:"preco" validate:"required,gt=0"`
	Cap   *decimal.Decimal `json:"teto" validate:"omitempty,lte=100"`
	Items []testItem       `json:"itens" validate:"required,min=1,dive"`
}

func decodeBody(body string) (testRequest, error) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var out testRequest
	err := DecodeAndValidate(req, &out)
	return out, err
}

func TestDecodeAndValidate_ValidRequest(t *testing.T) {
	out, err := decodeBody(`{"nome":"Caderno","preco":19.90,"teto":"50.00","itens":[{"produto_id":1,"quantidade":2}]}`)
	require.NoError(t, err)

	assert.Equal(t, "19.9", out.Price.String())
	require.NotNil(t, out.Cap)
	assert.Equal(t, "50", out.Cap.String())
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	_, err := decodeBody(`{"nome":`)
	assert.True(t, errors.Is(err, ErrMalformedBody))
	assert.Empty(t, FormatValidationErrors(err))
}

func TestDecodeAndValidate_ReportsJSONFieldNames(t *testing.T) {
	_, err := decodeBody(`{"nome":"ab","preco":0,"teto":"150","itens":[{"produto_id":1,"quantidade":0}]}`)
	require.Error(t, err)

	fields := map[string]string{}
	for _, ve := range FormatValidationErrors(err) {
		fields[ve.Field] = ve.Message
	}

	assert.Equal(t, "deve ter no mínimo 3 caracteres", fields["nome"])
	assert.Equal(t, "campo obrigatório", fields["preco"])
	assert.Equal(t, "deve ser menor ou igual a 100", fields["teto"])
	assert.Equal(t, "deve ser maior que 0", fields["quantidade"])
}

func TestDecodeAndValidate_EmptyItems(t *testing.T) {
	_, err := decodeBody(`{"nome":"Caderno","preco":"1.00","itens":[]}`)
	require.Error(t, err)

	errs := FormatValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "itens", errs[0].Field)
	assert.Equal(t, "deve conter ao menos 1 item(ns)", errs[0].Message)
}

func TestRespondWithDecodeError(t *testing.T) {
	_, err := decodeBody(`not json`)
	w := httptest.NewRecorder()
	RespondWithDecodeError(w, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "validation_errors")

	_, err = decodeBody(`{"nome":"Caderno","preco":"-1","itens":[{"produto_id":1,"quantidade":1}]}`)
	w = httptest.NewRecorder()
	RespondWithDecodeError(w, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_errors")
}

func TestProperty_DecimalPriceBound(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("prices pass the gt=0 tag exactly when positive", prop.ForAll(
		func(cents int64) bool {
			price := decimal.New(cents, -2)
			err := ValidateRequest(testRequest{
				Name:  "Caderno",
				Price: price,
				Items: []testItem{{ProductID: 1, Quantity: 1}},
			})
			if price.IsPositive() {
				return err == nil
			}
			return err != nil
		},
		gen.Int64Range(-100000, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_QuantityMustBePositive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("non-positive quantities are rejected", prop.ForAll(
		func(quantity int) bool {
			err := ValidateRequest(testRequest{
				Name:  "Caderno",
				Price: decimal.NewFromInt(1),
				Items: []testItem{{ProductID: 1, Quantity: quantity}},
			})
			if quantity > 0 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-50, 50),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
