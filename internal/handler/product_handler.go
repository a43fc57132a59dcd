package handler

import (
	"net/http"
	"strconv"
	"time"

	"naijashop/internal/config"
	"naijashop/internal/domain/model"
	"naijashop/internal/middleware"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/products の公開API + 出品者向け更新
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type productRequest struct {
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Price              int64      `json:"price" validate:"gte=0"`
	Currency           string     `json:"currency"`
	Category           string     `json:"category"`
	Brand              string     `json:"brand"`
	Stock              int64      `json:"stock" validate:"gte=0"`
	Image              string     `json:"image"`
	Tags               []string   `json:"tags"`
	IsActive           *bool      `json:"isActive"`
	DiscountPercentage int64      `json:"discountPercentage" validate:"gte=0,lte=100"`
	DiscountValidFrom  *time.Time `json:"discountValidFrom"`
	DiscountValidTo    *time.Time `json:"discountValidTo"`
}

func (r productRequest) toInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:               r.Name,
		Description:        r.Description,
		Price:              r.Price,
		Currency:           r.Currency,
		Category:           r.Category,
		Brand:              r.Brand,
		Stock:              r.Stock,
		Image:              r.Image,
		Tags:               r.Tags,
		IsActive:           r.IsActive,
		DiscountPercentage: r.DiscountPercentage,
		DiscountValidFrom:  r.DiscountValidFrom,
		DiscountValidTo:    r.DiscountValidTo,
	}
}

// PUTは送られた項目だけ変える
type productPatchRequest struct {
	Name               *string    `json:"name"`
	Description        *string    `json:"description"`
	Price              *int64     `json:"price" validate:"omitempty,gte=0"`
	Currency           *string    `json:"currency"`
	Category           *string    `json:"category"`
	Brand              *string    `json:"brand"`
	Stock              *int64     `json:"stock" validate:"omitempty,gte=0"`
	Image              *string    `json:"image"`
	Tags               []string   `json:"tags"`
	IsActive           *bool      `json:"isActive"`
	DiscountPercentage *int64     `json:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
	DiscountValidFrom  *time.Time `json:"discountValidFrom"`
	DiscountValidTo    *time.Time `json:"discountValidTo"`
}

func (r productPatchRequest) toPatch() usecase.ProductPatch {
	return usecase.ProductPatch{
		Name:               r.Name,
		Description:        r.Description,
		Price:              r.Price,
		Currency:           r.Currency,
		Category:           r.Category,
		Brand:              r.Brand,
		Stock:              r.Stock,
		Image:              r.Image,
		Tags:               r.Tags,
		IsActive:           r.IsActive,
		DiscountPercentage: r.DiscountPercentage,
		DiscountValidFrom:  r.DiscountValidFrom,
		DiscountValidTo:    r.DiscountValidTo,
	}
}

type reviewRequest struct {
	Rating  int64  `json:"rating"`
	Comment string `json:"comment"`
}

// 公開GETはトークン不要
func (h *ProductHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	auth := requireAuth(cfg, userRepo)
	sellers := with(auth, middleware.RoleGuard(model.RoleSeller, model.RoleAdmin))

	g := api.Group("/products")
	g.GET("", h.list)
	g.GET("/search", h.search)
	g.GET("/category/:category", h.byCategory)
	g.GET("/seller/:sellerId", h.bySeller)
	g.GET("/:id", h.detail)
	g.GET("/:id/reviews", h.reviews)

	g.POST("", h.create, sellers...)
	g.PUT("/:id", h.update, sellers...)
	g.DELETE("/:id", h.delete, sellers...)
	g.POST("/:id/reviews", h.addReview, auth...)
}

// GET /api/products?category&minPrice&maxPrice&search&seller&sortBy&order&page&limit
func (h *ProductHandler) list(c echo.Context) error {
	in, err := listInputFromQuery(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return h.respondList(c, in)
}

func (h *ProductHandler) search(c echo.Context) error {
	in, err := listInputFromQuery(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	in.Search = c.QueryParam("q")
	if in.Search == "" {
		return fail(c, http.StatusBadRequest, "Search query is required")
	}
	return h.respondList(c, in)
}

func (h *ProductHandler) byCategory(c echo.Context) error {
	in, err := listInputFromQuery(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	in.Category = c.Param("category")
	return h.respondList(c, in)
}

func (h *ProductHandler) bySeller(c echo.Context) error {
	in, err := listInputFromQuery(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	sellerID, valid := parseIDParam(c, "sellerId")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid seller id")
	}
	in.SellerID = &sellerID
	return h.respondList(c, in)
}

func (h *ProductHandler) respondList(c echo.Context, in usecase.ListProductsInput) error {
	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

type queryError string

func (e queryError) Error() string { return string(e) }

func listInputFromQuery(c echo.Context) (usecase.ListProductsInput, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return usecase.ListProductsInput{}, queryError("invalid page")
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return usecase.ListProductsInput{}, queryError("invalid limit")
	}
	minPrice, err := queryInt64Ptr(c, "minPrice")
	if err != nil {
		return usecase.ListProductsInput{}, queryError("invalid minPrice")
	}
	maxPrice, err := queryInt64Ptr(c, "maxPrice")
	if err != nil {
		return usecase.ListProductsInput{}, queryError("invalid maxPrice")
	}
	sellerID, err := queryInt64Ptr(c, "seller")
	if err != nil {
		return usecase.ListProductsInput{}, queryError("invalid seller")
	}

	return usecase.ListProductsInput{
		Page:     page,
		Limit:    limit,
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		SellerID: sellerID,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		SortBy:   c.QueryParam("sortBy"),
		Order:    c.QueryParam("order"),
	}, nil
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	p, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", p)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req productRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Create(c.Request().Context(), actorFrom(c), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusCreated, "Product created successfully", out)
}

func (h *ProductHandler) update(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req productPatchRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Update(c.Request().Context(), actorFrom(c), id, req.toPatch())
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Product updated successfully", out)
}

func (h *ProductHandler) delete(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), actorFrom(c), id); err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) reviews(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.uc.ListReviews(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

func (h *ProductHandler) addReview(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req reviewRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.AddReview(c.Request().Context(), actorFrom(c), id, usecase.ReviewInput{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusCreated, "Review added successfully", out)
}
