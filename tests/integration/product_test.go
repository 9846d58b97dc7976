//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 5 {
		t.Fatalf("expected 5 products, got %d", len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var kurta *productResponse
	for i := range products {
		if products[i].ID == "kurta-cotton-white" {
			kurta = &products[i]
			break
		}
	}

	if kurta == nil {
		t.Fatal("product 'kurta-cotton-white' not found")
	}
	if kurta.Name != "Handblock Cotton Kurta" {
		t.Errorf("name: got %q, want %q", kurta.Name, "Handblock Cotton Kurta")
	}
	if !kurta.Price.Equal(decimal.NewFromInt(1499)) {
		t.Errorf("price: got %s, want 1499", kurta.Price)
	}
	if kurta.Category != "apparel" {
		t.Errorf("category: got %q, want %q", kurta.Category, "apparel")
	}
	if len(kurta.Sizes) != 4 {
		t.Errorf("sizes: got %d entries, want 4", len(kurta.Sizes))
	}
	if l, ok := kurta.Sizes["L"]; !ok || l.Available {
		t.Errorf("size L: got %+v, want present and unavailable", l)
	}
	if kurta.Image.Thumbnail == "" {
		t.Error("image.thumbnail is empty")
	}
	if kurta.Image.Mobile == "" {
		t.Error("image.mobile is empty")
	}
	if kurta.Image.Tablet == "" {
		t.Error("image.tablet is empty")
	}
	if kurta.Image.Desktop == "" {
		t.Error("image.desktop is empty")
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/scarf-silk-indigo")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != "scarf-silk-indigo" {
		t.Errorf("id: got %q, want %q", product.ID, "scarf-silk-indigo")
	}
	if product.Name != "Indigo Silk Scarf" {
		t.Errorf("name: got %q, want %q", product.Name, "Indigo Silk Scarf")
	}
	if len(product.Sizes) != 0 {
		t.Errorf("sizes: got %d entries, want none", len(product.Sizes))
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/no-such-product")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}
