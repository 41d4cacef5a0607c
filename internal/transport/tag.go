package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type (
	TagReq struct {
		Name string `json:"name" validate:"required,max=256"`
	}

	TagResp struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}
)

func (s *HTTPServer) Tag(c echo.Context) error {
	tagID, err := GetAndParseParam(c, "tag_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	tag, err := s.svc.TagGet(user, tagID)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: TagResp{ID: tag.ID, Name: tag.Name}})
}

func (s *HTTPServer) TagAssociate(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := TagReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	result, err := s.svc.TagAssociate(user, recipeID, req.Name)
	if err != nil {
		return s.respondErr(c, err)
	}

	code := http.StatusOK
	if result.Created {
		code = http.StatusCreated
	}
	return c.JSON(code, DataResp{Data: TagResp{ID: result.Tag.ID, Name: result.Tag.Name}})
}

func (s *HTTPServer) TagDissociate(c echo.Context) error {
	tagID, err := GetAndParseParam(c, "tag_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.TagDissociate(user, tagID, recipeID); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) TagDestroy(c echo.Context) error {
	tagID, err := GetAndParseParam(c, "tag_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.TagDestroy(user, tagID); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) TagUpdate(c echo.Context) error {
	tagID, err := GetAndParseParam(c, "tag_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := TagReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if _, err := s.svc.TagUpdate(user, tagID, req.Name); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) TagUpdateForRecipe(c echo.Context) error {
	tagID, err := GetAndParseParam(c, "tag_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := TagReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.TagUpdateForRecipe(user, tagID, recipeID, req.Name); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) TagSearch(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	matches, err := s.svc.TagSearch(user, c.QueryParam("search_term"))
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: MatchesResp{Matches: matches}})
}
