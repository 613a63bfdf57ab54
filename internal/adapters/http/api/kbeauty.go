package api

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/internal/domain/catalog"
	"github.com/amore/clue/pkg/logger"
)

// brandCatalogs reads every brand collection concurrently and returns the
// normalized catalogs in catalog.Brands order. A failing brand is logged and
// left empty; only a lost database connection fails the whole read.
func (s *Server) brandCatalogs(ctx context.Context, f repository.BrandFilter) ([]catalog.BrandProducts, error) {
	out := make([]catalog.BrandProducts, len(catalog.Brands))
	var g errgroup.Group
	for i, b := range catalog.Brands {
		out[i].Brand = b.Name
		g.Go(func() error {
			docs, err := s.store.BrandProducts(ctx, b.Collection, f)
			if errors.Is(err, repository.ErrNotConnected) {
				return err
			}
			if err != nil {
				s.logger.Warn(ctx, "brand catalog read failed",
					logger.String("brand", b.Name),
					logger.String("collection", b.Collection),
					logger.Error(err))
				return nil
			}
			products := make([]catalog.Product, 0, len(docs))
			for _, d := range docs {
				products = append(products, catalog.NormalizeProduct(d, b.Name))
			}
			out[i].Products = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(brands []catalog.BrandProducts) []catalog.Product {
	var all []catalog.Product
	for _, b := range brands {
		all = append(all, b.Products...)
	}
	return all
}

// handleKBeautyTrends handles GET /api/real/kbeauty/trends-data.
func (s *Server) handleKBeautyTrends(w http.ResponseWriter, r *http.Request) {
	brands, err := s.brandCatalogs(r.Context(), repository.BrandFilter{})
	if err != nil {
		s.fail(w, r, "kbeauty trends", err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.TrendsData(brands, query(r, "category", "")))
}

type ingredientProductsResponse struct {
	Ingredient string            `json:"ingredient"`
	Products   []catalog.Product `json:"products"`
	TotalCount int               `json:"totalCount"`
}

// handleProductsByIngredient handles GET /api/real/kbeauty/products-by-ingredient.
func (s *Server) handleProductsByIngredient(w http.ResponseWriter, r *http.Request) {
	ingredient := query(r, "ingredient", "")
	if ingredient == "" {
		missingParam(w, "ingredient")
		return
	}
	brands, err := s.brandCatalogs(r.Context(), repository.BrandFilter{Ingredient: ingredient})
	if err != nil {
		s.fail(w, r, "products by ingredient", err)
		return
	}
	products := catalog.DedupeNew(flatten(brands))
	writeJSON(w, http.StatusOK, ingredientProductsResponse{Ingredient: ingredient, Products: products, TotalCount: len(products)})
}

type concernProductsResponse struct {
	Concern     string            `json:"concern"`
	SearchTerms []string          `json:"searchTerms"`
	Products    []catalog.Product `json:"products"`
	TotalCount  int               `json:"totalCount"`
}

// handleProductsByConcern handles GET /api/real/kbeauty/products-by-concern.
func (s *Server) handleProductsByConcern(w http.ResponseWriter, r *http.Request) {
	concern := query(r, "concern", "")
	if concern == "" {
		missingParam(w, "concern")
		return
	}
	terms := catalog.ConcernTerms(concern)
	brands, err := s.brandCatalogs(r.Context(), repository.BrandFilter{Concerns: terms})
	if err != nil {
		s.fail(w, r, "products by concern", err)
		return
	}
	products := catalog.DedupeNew(flatten(brands))
	writeJSON(w, http.StatusOK, concernProductsResponse{Concern: concern, SearchTerms: terms, Products: products, TotalCount: len(products)})
}
