package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func TestCreateDocumentRejectsReservedConcepts(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "reserved topic type",
			body: `{"title":"T","content":"some text","concepts":[{"id":"c1","label":"A","type":"Topic"}]}`,
		},
		{
			name: "reserved refinement type",
			body: `{"title":"T","content":"some text","concepts":[{"id":"c1","label":"A","type":"Refinement"}]}`,
		},
		{
			name: "reserved micro-concept id",
			body: `{"title":"T","content":"some text","concepts":[{"id":"c1_sub_0","label":"A","type":"Process"}]}`,
		},
	}

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := CreateDocumentHandler(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}
