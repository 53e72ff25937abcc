package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// Catalog handlers

type productList struct {
	Products []*models.Product `json:"products"`
	Total    int               `json:"total"`
}

func newProductList(products []*models.Product) productList {
	if products == nil {
		products = []*models.Product{}
	}
	return productList{Products: products, Total: len(products)}
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.repo.ListProducts(r.Context())
	if err != nil {
		slog.Error("failed to list products", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, newProductList(products))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "product id must be a positive integer")
		return
	}

	product, err := s.repo.GetProduct(r.Context(), id)
	if err != nil {
		slog.Error("failed to get product", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get product")
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	category := models.Category(strings.ToLower(chi.URLParam(r, "category")))

	if category == models.CategoryAll {
		s.handleListProducts(w, r)
		return
	}

	// unknown categories are an empty shelf, not an error
	products, err := s.repo.ListProductsByCategory(r.Context(), category)
	if err != nil {
		slog.Error("failed to list products by category", "error", err, "category", category)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, newProductList(products))
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeJSON(r, &product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if strings.TrimSpace(product.Name) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	if product.Price < 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "price must not be negative")
		return
	}
	if !product.Category.IsValid() {
		respondError(w, http.StatusBadRequest, "validation_error", "unknown category: "+string(product.Category))
		return
	}

	if product.ID != 0 {
		existing, err := s.repo.GetProduct(r.Context(), product.ID)
		if err != nil {
			slog.Error("failed to get product", "error", err, "id", product.ID)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to create product")
			return
		}
		if existing != nil {
			respondError(w, http.StatusConflict, "conflict", "product id already exists")
			return
		}
	}

	if err := s.repo.CreateProduct(r.Context(), &product); err != nil {
		slog.Error("failed to create product", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create product")
		return
	}

	slog.Info("product created", "id", product.ID, "name", product.Name, "client", callerName(r.Context()))

	respondJSON(w, http.StatusCreated, product)
}
