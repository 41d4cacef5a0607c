package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recipebox/recipebox-back/internal/db"
	"github.com/recipebox/recipebox-back/internal/service"
)

type (
	// TimeReq keeps the unit fields as pointers: absent and zero both mean
	// "unset", mirroring how the client sends cleared <select> fields.
	TimeReq struct {
		TimeType string `json:"time_type" validate:"required"`
		Days     *int   `json:"days"`
		Hours    *int   `json:"hours"`
		Minutes  *int   `json:"minutes"`
		Note     string `json:"note"`
	}

	TimeResp struct {
		ID       uint64 `json:"id"`
		TimeType string `json:"time_type"`
		Days     *int   `json:"days"`
		Hours    *int   `json:"hours"`
		Minutes  *int   `json:"minutes"`
		Note     string `json:"note"`
	}
)

func (s *HTTPServer) Time(c echo.Context) error {
	timeID, err := GetAndParseParam(c, "time_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	recipeTime, err := s.svc.RecipeTimeGet(user, timeID)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: timeResp(recipeTime)})
}

func (s *HTTPServer) TimeCreate(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := TimeReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	recipeTime, err := s.svc.RecipeTimeCreate(user, recipeID, timeParams(req))
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, DataResp{Data: timeResp(recipeTime)})
}

func (s *HTTPServer) TimeUpdate(c echo.Context) error {
	timeID, err := GetAndParseParam(c, "time_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := TimeReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.RecipeTimeUpdate(user, timeID, timeParams(req)); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) TimeDestroy(c echo.Context) error {
	timeID, err := GetAndParseParam(c, "time_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.RecipeTimeDestroy(user, timeID); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func timeParams(req TimeReq) service.RecipeTimeParams {
	return service.RecipeTimeParams{
		TimeType: req.TimeType,
		Days:     req.Days,
		Hours:    req.Hours,
		Minutes:  req.Minutes,
		Note:     req.Note,
	}
}

func timeResp(recipeTime *db.RecipeTime) TimeResp {
	return TimeResp{
		ID:       recipeTime.ID,
		TimeType: recipeTime.TimeType,
		Days:     recipeTime.Days,
		Hours:    recipeTime.Hours,
		Minutes:  recipeTime.Minutes,
		Note:     recipeTime.Note,
	}
}
