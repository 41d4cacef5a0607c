package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type (
	EquipmentReq struct {
		Description string `json:"description" validate:"required,max=256"`
	}

	EquipmentResp struct {
		ID          uint64 `json:"id"`
		Description string `json:"description"`
	}
)

func (s *HTTPServer) Equipment(c echo.Context) error {
	equipmentID, err := GetAndParseParam(c, "equipment_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	equipment, err := s.svc.EquipmentGet(user, equipmentID)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{
		Data: EquipmentResp{ID: equipment.ID, Description: equipment.Description},
	})
}

func (s *HTTPServer) EquipmentAssociate(c echo.Context) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := EquipmentReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	result, err := s.svc.EquipmentAssociate(user, recipeID, req.Description)
	if err != nil {
		return s.respondErr(c, err)
	}

	code := http.StatusOK
	if result.Created {
		code = http.StatusCreated
	}
	return c.JSON(code, DataResp{
		Data: EquipmentResp{ID: result.Equipment.ID, Description: result.Equipment.Description},
	})
}

func (s *HTTPServer) EquipmentDissociate(c echo.Context) error {
	equipmentID, err := GetAndParseParam(c, "equipment_id")
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

	if err := s.svc.EquipmentDissociate(user, equipmentID, recipeID); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) EquipmentDestroy(c echo.Context) error {
	equipmentID, err := GetAndParseParam(c, "equipment_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.EquipmentDestroy(user, equipmentID); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) EquipmentUpdate(c echo.Context) error {
	equipmentID, err := GetAndParseParam(c, "equipment_id")
	if err != nil {
		return s.respondErr(c, err)
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := EquipmentReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if _, err := s.svc.EquipmentUpdate(user, equipmentID, req.Description); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) EquipmentUpdateForRecipe(c echo.Context) error {
	equipmentID, err := GetAndParseParam(c, "equipment_id")
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

	req := EquipmentReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.EquipmentUpdateForRecipe(user, equipmentID, recipeID, req.Description); err != nil {
		return s.respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) EquipmentSearch(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	matches, err := s.svc.EquipmentSearch(user, c.QueryParam("search_term"))
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, DataResp{Data: MatchesResp{Matches: matches}})
}
