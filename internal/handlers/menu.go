package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tezpos/tezpos/internal/services"
)

// listCategories returns the menu categories
func (r *Router) listCategories(w http.ResponseWriter, req *http.Request) {
	categories, err := r.catalog.Categories()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// createCategory adds a category
func (r *Router) createCategory(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Name string `json:"name" validate:"required"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	category, err := r.catalog.CreateCategory(body.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// listProducts returns the menu, optionally filtered by ?category=
func (r *Router) listProducts(w http.ResponseWriter, req *http.Request) {
	products, err := r.catalog.Products(req.URL.Query().Get("category"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// getProduct returns one product
func (r *Router) getProduct(w http.ResponseWriter, req *http.Request) {
	product, err := r.catalog.Product(mux.Vars(req)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// createProduct adds a product
func (r *Router) createProduct(w http.ResponseWriter, req *http.Request) {
	var body services.ProductInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	product, err := r.catalog.CreateProduct(body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// updateProduct edits a product
func (r *Router) updateProduct(w http.ResponseWriter, req *http.Request) {
	var body services.ProductInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	product, err := r.catalog.UpdateProduct(mux.Vars(req)["id"], body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// deleteProduct tombstones a product
func (r *Router) deleteProduct(w http.ResponseWriter, req *http.Request) {
	if err := r.catalog.DeleteProduct(mux.Vars(req)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
