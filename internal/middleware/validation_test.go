package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
)

type sizedPayload struct {
	Size string `json:"size" validate:"required,clothingsize"`
}

type statusPayload struct {
	Status string `json:"status" validate:"required,orderstatus"`
}

func TestClothingSizeValidator(t *testing.T) {
	for _, size := range []string{"XS", "S", "M", "L", "XL"} {
		if err := ValidateRequest(sizedPayload{Size: size}); err != nil {
			t.Errorf("size %s rejected: %v", size, err)
		}
	}

	for _, size := range []string{"XXL", "xs", "m", "38", ""} {
		if err := ValidateRequest(sizedPayload{Size: size}); err == nil {
			t.Errorf("size %q accepted", size)
		}
	}
}

func TestOrderStatusValidator(t *testing.T) {
	for _, status := range []string{"pendiente", "enviado", "entregado", "cancelado"} {
		if err := ValidateRequest(statusPayload{Status: status}); err != nil {
			t.Errorf("status %s rejected: %v", status, err)
		}
	}

	for _, status := range []string{"pending", "shipped", "Pendiente", ""} {
		if err := ValidateRequest(statusPayload{Status: status}); err == nil {
			t.Errorf("status %q accepted", status)
		}
	}
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("valid body decodes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"size":"M"}`))
		var payload sizedPayload
		if err := DecodeAndValidate(req, &payload); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if payload.Size != "M" {
			t.Errorf("size = %q", payload.Size)
		}
	})

	t.Run("malformed JSON errors", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"size":`))
		var payload sizedPayload
		if err := DecodeAndValidate(req, &payload); err == nil {
			t.Fatal("expected decode error")
		}
	})

	t.Run("validation failure yields field errors", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"size":"XXL"}`))
		var payload sizedPayload
		err := DecodeAndValidate(req, &payload)
		if err == nil {
			t.Fatal("expected validation error")
		}

		fieldErrors := FormatValidationErrors(err)
		if len(fieldErrors) != 1 {
			t.Fatalf("got %d field errors, want 1", len(fieldErrors))
		}
		if fieldErrors[0].Field != "Size" {
			t.Errorf("field = %q, want Size", fieldErrors[0].Field)
		}
		if fieldErrors[0].Message == "" {
			t.Error("field error has no message")
		}
	})
}
