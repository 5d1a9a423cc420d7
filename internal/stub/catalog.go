package stub

import (
	"bufio"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mkasonde/pvc-portal/internal/modules/product"
)

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	products := make([]product.Product, len(s.products))
	copy(products, s.products)
	s.mu.Unlock()
	respond(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			respond(w, http.StatusOK, p)
			return
		}
	}
	errorJSON(w, http.StatusNotFound, "product not found")
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "product name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.addProduct(req.Name)
	respond(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "product name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Name = req.Name
			respond(w, http.StatusOK, s.products[i])
			return
		}
	}
	errorJSON(w, http.StatusNotFound, "product not found")
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			respond(w, http.StatusNoContent, nil)
			return
		}
	}
	errorJSON(w, http.StatusNotFound, "product not found")
}

// uploadProducts accepts a multipart file of one product name per line.
func (s *Server) uploadProducts(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	scanner := bufio.NewScanner(file)
	added := 0
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		s.addProduct(name)
		added++
	}
	if err := scanner.Err(); err != nil {
		errorJSON(w, http.StatusBadRequest, "unreadable upload")
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "imported": added})
}

// addProduct appends a minimally populated product; callers hold s.mu.
func (s *Server) addProduct(name string) product.Product {
	s.nextID++
	p := product.Product{
		ID:       strconv.Itoa(s.nextID),
		Name:     name,
		Category: "General",
		Active:   true,
	}
	s.products = append(s.products, p)
	return p
}
