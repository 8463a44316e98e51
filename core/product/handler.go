package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rahmadiyan/health-store/api/web"
	"github.com/rahmadiyan/health-store/api/weberr"
	"github.com/rahmadiyan/health-store/core/claims"
	"github.com/rahmadiyan/health-store/core/vendor"
	"github.com/rahmadiyan/health-store/database"
	"github.com/rahmadiyan/health-store/validate"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		qs := r.URL.Query()

		f := Filter{
			Category: qs.Get("category"),
			VendorID: qs.Get("vendor"),
			Search:   qs.Get("search"),
			Page:     1,
			Limit:    12,
		}

		if p, err := strconv.Atoi(qs.Get("page")); err == nil && p > 0 {
			f.Page = p
		}
		if l, err := strconv.Atoi(qs.Get("limit")); err == nil && l > 0 {
			f.Limit = l
		}

		products, err := List(ctx, db, f)
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}

		return web.Respond(ctx, w, products, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		prd, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, prd, http.StatusOK)
	}
}

// HandleCreate lets an admin create a product for any store, while a
// vendor may only stock their own, already approved, store.
func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var pn ProductNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding product: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		vendorID := pn.VendorID

		switch clm.Role {
		case claims.RoleAdmin:
			if err := validate.CheckID(vendorID); err != nil {
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}
			if _, err := vendor.Fetch(ctx, db, vendorID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return weberr.NotFound(err)
				}
				return fmt.Errorf("fetching vendor[%s]: %w", vendorID, err)
			}

		default:
			vnd, err := vendor.FetchByUser(ctx, db, clm.UserID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return weberr.Forbidden(errors.New("vendor account not approved"))
				}
				return fmt.Errorf("fetching vendor of user[%s]: %w", clm.UserID, err)
			}
			if !vnd.IsApproved {
				return weberr.Forbidden(errors.New("vendor account not approved"))
			}
			vendorID = vnd.ID
		}

		brand := pn.Brand
		if brand == "" {
			brand = "Generic"
		}

		now := time.Now().UTC()
		prd := Product{
			ID:                   validate.GenerateID(),
			VendorID:             vendorID,
			Name:                 pn.Name,
			Slug:                 Slugify(pn.Name),
			Description:          pn.Description,
			Category:             pn.Category,
			Brand:                brand,
			SKU:                  pn.SKU,
			BatchNumber:          pn.BatchNumber,
			ExpirationDate:       pn.ExpirationDate,
			PrescriptionRequired: pn.PrescriptionRequired,
			DosageInfo:           pn.DosageInfo,
			Price:                pn.Price,
			Stock:                pn.Stock,
			Images:               pn.Images,
			Tags:                 pn.Tags,
			CreatedAt:            now,
			UpdatedAt:            now,
		}

		if err := Create(ctx, db, prd); err != nil {
			if database.IsUniqueViolation(err) {
				err := errors.New("a product with this name already exists")
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}
			return fmt.Errorf("creating product: %w", err)
		}

		return web.Respond(ctx, w, prd, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var pu ProductUp
		if err := web.Decode(w, r, &pu); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding product update: %w", err))
		}

		if err := validate.Check(pu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		prd, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", id, err)
		}

		if err := authorize(ctx, db, clm, prd); err != nil {
			return err
		}

		if pu.Name != nil {
			prd.Name = *pu.Name
			prd.Slug = Slugify(*pu.Name)
		}
		if pu.Description != nil {
			prd.Description = *pu.Description
		}
		if pu.Category != nil {
			prd.Category = *pu.Category
		}
		if pu.Brand != nil {
			prd.Brand = *pu.Brand
		}
		if pu.SKU != nil {
			prd.SKU = *pu.SKU
		}
		if pu.BatchNumber != nil {
			prd.BatchNumber = *pu.BatchNumber
		}
		if pu.ExpirationDate != nil {
			prd.ExpirationDate = pu.ExpirationDate
		}
		if pu.PrescriptionRequired != nil {
			prd.PrescriptionRequired = *pu.PrescriptionRequired
		}
		if pu.DosageInfo != nil {
			prd.DosageInfo = *pu.DosageInfo
		}
		if pu.Price != nil {
			prd.Price = *pu.Price
		}
		if pu.Stock != nil {
			prd.Stock = *pu.Stock
		}
		if pu.Images != nil {
			prd.Images = pu.Images
		}
		if pu.Tags != nil {
			prd.Tags = pu.Tags
		}
		prd.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, prd); err != nil {
			return fmt.Errorf("updating product[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, prd, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		prd, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", id, err)
		}

		if err := authorize(ctx, db, clm, prd); err != nil {
			return err
		}

		if err := Delete(ctx, db, id); err != nil {
			return fmt.Errorf("deleting product[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// authorize admits admins and the product's owning vendor.
func authorize(ctx context.Context, db *sqlx.DB, clm claims.Claims, prd Product) error {
	if claims.IsAdmin(ctx) {
		return nil
	}

	vnd, err := vendor.FetchByUser(ctx, db, clm.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return weberr.Forbidden(errors.New("not the product owner"))
		}
		return fmt.Errorf("fetching vendor of user[%s]: %w", clm.UserID, err)
	}

	if vnd.ID != prd.VendorID {
		return weberr.Forbidden(errors.New("not the product owner"))
	}
	return nil
}
