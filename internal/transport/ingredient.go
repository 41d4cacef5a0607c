package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recipebox/recipebox-back/internal/db"
	"github.com/recipebox/recipebox-back/internal/service"
)

type (
	IngredientReq struct {
		Amount      string `json:"amount" validate:"max=256"`
		Brand       string `json:"brand" validate:"max=256"`
		Description string `json:"description" validate:"required,max=256"`
		Unit        string `json:"unit" validate:"max=256"`
	}

	// IngredientResp flattens the references back to the strings the
	// client sent; callers re-resolve by name when they need the rows.
	IngredientResp struct {
		ID          uint64 `json:"id"`
		Amount      string `json:"amount"`
		Brand       string `json:"brand,omitempty"`
		Description string `json:"description"`
		Unit        string `json:"unit,omitempty"`
	}
)

func (s *HTTPServer) Ingredient(c echo.Context) error {
	ingredientID, err := GetAndParseParam(c, "ingredient_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	ingredient, err := s.svc.IngredientGet(user, ingredientID)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: ingredientResp(ingredient)})
}

func (s *HTTPServer) IngredientAssociate(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := IngredientReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	ingredient, err := s.svc.IngredientAssociate(user, recipeID, ingredientParams(req))
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, DataResp{Data: ingredientResp(ingredient)})
}

func (s *HTTPServer) IngredientUpdate(c echo.Context) error {
	ingredientID, err := GetAndParseParam(c, "ingredient_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := IngredientReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.IngredientUpdate(user, ingredientID, ingredientParams(req)); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) IngredientDestroy(c echo.Context) error {
	ingredientID, err := GetAndParseParam(c, "ingredient_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.IngredientDestroy(user, ingredientID); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) IngredientBrandSearch(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	matches, err := s.svc.IngredientBrandSearch(user, c.QueryParam("search_term"))
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: MatchesResp{Matches: matches}})
}

func (s *HTTPServer) IngredientDescriptionSearch(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	matches, err := s.svc.IngredientDescriptionSearch(user, c.QueryParam("search_term"))
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: MatchesResp{Matches: matches}})
}

func (s *HTTPServer) IngredientUnitSearch(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	matches, err := s.svc.IngredientUnitSearch(user, c.QueryParam("search_term"))
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: MatchesResp{Matches: matches}})
}

func ingredientParams(req IngredientReq) service.IngredientParams {
	return service.IngredientParams{
		Amount:      req.Amount,
		Brand:       req.Brand,
		Description: req.Description,
		Unit:        req.Unit,
	}
}

func ingredientResp(ingredient *db.Ingredient) IngredientResp {
	resp := IngredientResp{
		ID:          ingredient.ID,
		Amount:      ingredient.Amount,
		Description: ingredient.Description.Text,
	}
	if ingredient.Brand != nil {
		resp.Brand = ingredient.Brand.Name
	}
	if ingredient.Unit != nil {
		resp.Unit = ingredient.Unit.Name
	}
	return resp
}
