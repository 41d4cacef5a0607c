package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recipebox/recipebox-back/internal/db"
)

type (
	RecipeCreateReq struct {
		Title string `json:"title" validate:"required,max=256"`
	}

	RecipeTitleUpdateReq struct {
		Title string `json:"title" validate:"required,max=256"`
	}

	RecipeNotesUpdateReq struct {
		Notes string `json:"notes" validate:"required"`
	}

	RecipeRatingUpdateReq struct {
		Rating int `json:"rating" validate:"required,min=1,max=5"`
	}

	RecipeServingsUpdateReq struct {
		Servings float64 `json:"servings" validate:"gte=0"`
	}

	RecipeListItemResp struct {
		ID    uint64 `json:"id"`
		Title string `json:"title"`
	}

	RecipeResp struct {
		ID          uint64           `json:"id"`
		Title       string           `json:"title"`
		Notes       string           `json:"notes"`
		Rating      *int             `json:"rating"`
		Servings    *float64         `json:"servings"`
		Tags        []TagResp        `json:"recipe_tags"`
		Equipment   []EquipmentResp  `json:"recipe_equipment"`
		Times       []TimeResp       `json:"recipe_times"`
		Ingredients []IngredientResp `json:"ingredients"`
	}

	RecipeNotesResp struct {
		Notes string `json:"notes"`
	}

	RecipeRatingResp struct {
		Rating *int `json:"rating"`
	}

	RecipeServingsResp struct {
		Servings *float64 `json:"servings"`
	}
)

func (s *HTTPServer) Recipes(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	recipes, err := s.svc.RecipeList(user)
	if err != nil {
		return s.respondErr(c, err)
	}

	resp := make([]RecipeListItemResp, len(recipes))
	for i := range recipes {
		resp[i] = RecipeListItemResp{
			ID:    recipes[i].ID,
			Title: recipes[i].Title,
		}
	}
	return c.JSON(http.StatusOK, DataResp{Data: resp})
}

func (s *HTTPServer) Recipe(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	recipe, err := s.svc.RecipeGet(user, recipeID)
	if err != nil {
		return s.respondErr(c, err)
	}

	return c.JSON(http.StatusOK, DataResp{Data: recipeResp(recipe)})
}

func (s *HTTPServer) RecipeCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := RecipeCreateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	recipe, err := s.svc.RecipeCreate(user, req.Title)
	if err != nil {
		return s.respondErr(c, err)
	}

	return c.JSON(http.StatusCreated, DataResp{
		Data: RecipeListItemResp{ID: recipe.ID, Title: recipe.Title},
	})
}

func (s *HTTPServer) RecipeTitleUpdate(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := RecipeTitleUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.RecipeTitleUpdate(user, recipeID, req.Title); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) RecipeNotes(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	notes, err := s.svc.RecipeNotesGet(user, recipeID)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: RecipeNotesResp{Notes: notes}})
}

func (s *HTTPServer) RecipeNotesUpdate(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := RecipeNotesUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.RecipeNotesUpdate(user, recipeID, req.Notes); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) RecipeNotesDestroy(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.RecipeNotesDestroy(user, recipeID); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) RecipeRating(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	rating, err := s.svc.RecipeRatingGet(user, recipeID)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: RecipeRatingResp{Rating: rating}})
}

func (s *HTTPServer) RecipeRatingUpdate(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := RecipeRatingUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.RecipeRatingUpdate(user, recipeID, req.Rating); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) RecipeRatingDestroy(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.RecipeRatingDestroy(user, recipeID); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) RecipeServings(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	servings, err := s.svc.RecipeServingsGet(user, recipeID)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: RecipeServingsResp{Servings: servings}})
}

func (s *HTTPServer) RecipeServingsUpdate(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := RecipeServingsUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.RecipeServingsUpdate(user, recipeID, req.Servings); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) RecipeServingsDestroy(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.RecipeServingsDestroy(user, recipeID); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func recipeResp(recipe *db.Recipe) RecipeResp {
	resp := RecipeResp{
		ID:          recipe.ID,
		Title:       recipe.Title,
		Notes:       recipe.Notes,
		Rating:      recipe.Rating,
		Servings:    recipe.Servings,
		Tags:        make([]TagResp, len(recipe.Tags)),
		Equipment:   make([]EquipmentResp, len(recipe.Equipment)),
		Times:       make([]TimeResp, len(recipe.Times)),
		Ingredients: make([]IngredientResp, len(recipe.Ingredients)),
	}
	for i := range recipe.Tags {
		resp.Tags[i] = TagResp{ID: recipe.Tags[i].ID, Name: recipe.Tags[i].Name}
	}
	for i := range recipe.Equipment {
		resp.Equipment[i] = EquipmentResp{
			ID:          recipe.Equipment[i].ID,
			Description: recipe.Equipment[i].Description,
		}
	}
	for i := range recipe.Times {
		resp.Times[i] = timeResp(&recipe.Times[i])
	}
	for i := range recipe.Ingredients {
		resp.Ingredients[i] = ingredientResp(&recipe.Ingredients[i])
	}
	return resp
}
