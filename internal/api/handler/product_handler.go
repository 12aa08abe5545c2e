package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/service"
)

// maxUploadBytes caps a single uploaded image.
const maxUploadBytes = 10 << 20

// CatalogAPI is what the product routes need from the catalog service.
type CatalogAPI interface {
	List(ctx context.Context, filter domain.ProductFilter) []domain.Product
	Get(ctx context.Context, id string) (*domain.Product, error)
	MyProducts(ctx context.Context, seller *domain.User) ([]domain.Product, error)
	Create(ctx context.Context, seller *domain.User, in domain.NewProduct) (*domain.Product, error)
	Update(ctx context.Context, seller *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, seller *domain.User, id string) error
	UploadImages(ctx context.Context, seller *domain.User, files []service.Upload) ([]string, error)
	DeleteImage(ctx context.Context, seller *domain.User, ref string) error
	PreviewURL(ref string) string
}

type ProductHandler struct {
	catalog CatalogAPI
}

func NewProductHandler(catalog CatalogAPI) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type productRequest struct {
	Name        string          `json:"name"     validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	ImageURLs   []string        `json:"imageUrls"`
	Stock       int             `json:"stock"    validate:"gte=0"`
}

type productPatchRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	ImageURLs   []string         `json:"imageUrls"`
	Stock       *int             `json:"stock"`
}

type productListResponse struct {
	Products []domain.Product `json:"products"`
}

type uploadResponse struct {
	Refs []string `json:"refs"`
	URLs []string `json:"urls"`
}

// List returns the catalog, newest first.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category   query     string  false  "Category, All for every category"
// @Param        min_price  query     string  false  "Lower price bound"
// @Param        max_price  query     string  false  "Upper price bound"
// @Success      200        {object}  productListResponse
// @Failure      400        {object}  errorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	filter := domain.ProductFilter{Category: strings.TrimSpace(c.QueryParam("category"))}
	var err error
	if filter.MinPrice, err = priceParam(c, "min_price"); err != nil {
		return err
	}
	if filter.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productListResponse{Products: nonNil(h.catalog.List(c.Request().Context(), filter))})
}

func priceParam(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return &d, nil
}

// Get returns one product.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Mine lists the caller's own products.
//
// @Summary      List my products
// @Tags         seller
// @Produce      json
// @Success      200  {object}  productListResponse
// @Router       /seller/products [get]
func (h *ProductHandler) Mine(c echo.Context) error {
	seller, err := ctxUser(c)
	if err != nil {
		return err
	}
	products, err := h.catalog.MyProducts(c.Request().Context(), seller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productListResponse{Products: nonNil(products)})
}

// Create adds a product owned by the caller.
//
// @Summary      Create a product
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      422   {object}  errorResponse
// @Router       /seller/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	seller, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.catalog.Create(c.Request().Context(), seller, domain.NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURLs:   req.ImageURLs,
		Stock:       req.Stock,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update applies a partial update to one of the caller's products.
//
// @Summary      Update a product
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Product id"
// @Param        body  body      productPatchRequest  true  "Fields to change"
// @Success      200   {object}  domain.Product
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /seller/products/{id} [patch]
func (h *ProductHandler) Update(c echo.Context) error {
	seller, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req productPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	p, err := h.catalog.Update(c.Request().Context(), seller, c.Param("id"), domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURLs:   req.ImageURLs,
		Stock:       req.Stock,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes one of the caller's products.
//
// @Summary      Delete a product
// @Tags         seller
// @Param        id   path  string  true  "Product id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /seller/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	seller, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.Request().Context(), seller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Upload stores the multipart "files" in order and returns their refs.
//
// @Summary      Upload product images
// @Tags         seller
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "Images"
// @Success      201    {object}  uploadResponse
// @Failure      422    {object}  errorResponse
// @Router       /seller/files [post]
func (h *ProductHandler) Upload(c echo.Context) error {
	seller, err := ctxUser(c)
	if err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "expected multipart form")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "files is required")
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		u, err := readUpload(fh)
		if err != nil {
			return err
		}
		uploads = append(uploads, u)
	}

	refs, err := h.catalog.UploadImages(c.Request().Context(), seller, uploads)
	if err != nil {
		return err
	}
	resp := uploadResponse{Refs: refs, URLs: make([]string, len(refs))}
	for i, ref := range refs {
		resp.URLs[i] = h.catalog.PreviewURL(ref)
	}
	return c.JSON(http.StatusCreated, resp)
}

func readUpload(fh *multipart.FileHeader) (service.Upload, error) {
	if fh.Size > maxUploadBytes {
		return service.Upload{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, fh.Filename+" is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable file "+fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return service.Upload{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable file "+fh.Filename)
	}
	if len(data) > maxUploadBytes {
		return service.Upload{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, fh.Filename+" is too large")
	}
	ct := fh.Header.Get(echo.HeaderContentType)
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return service.Upload{Data: data, ContentType: ct}, nil
}

// DeleteFile removes an uploaded image.
//
// @Summary      Delete an uploaded image
// @Tags         seller
// @Param        ref  path  string  true  "File ref"
// @Success      204
// @Router       /seller/files/{ref} [delete]
func (h *ProductHandler) DeleteFile(c echo.Context) error {
	seller, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteImage(c.Request().Context(), seller, c.Param("ref")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
