package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/config"
	"github.com/recipebox/recipebox-back/internal/db"
	"github.com/recipebox/recipebox-back/internal/service"
)

const sessionCookieName = "recipebox_session"

// rememberMeMaxAge is the persistent-cookie lifetime when login is called
// with remember_me.
const rememberMeMaxAge = 30 * 24 * 60 * 60

type (
	ErrorResp struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors,omitempty"`
	}

	MatchesResp struct {
		Matches []string `json:"matches"`
	}

	DataResp struct {
		Data interface{} `json:"data"`
	}

	DataMessageResp struct {
		Data    interface{} `json:"data"`
		Message string      `json:"message"`
	}

	MessageResp struct {
		Message string `json:"message"`
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		e      *echo.Echo
		svc    *service.Service
		logger *zap.SugaredLogger
	}
)

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, svc *service.Service, logger *zap.SugaredLogger) *HTTPServer {
	instance := newServer(svc, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := instance.e.Start(listen); err != nil && err != http.ErrServerClosed {
					instance.e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return instance.e.Shutdown(ctx)
		},
	})

	return instance
}

func newServer(svc *service.Service, logger *zap.SugaredLogger) *HTTPServer {
	e := echo.New()

	instance := HTTPServer{
		e:      e,
		svc:    svc,
		logger: logger,
	}

	e.POST("/signup", instance.Signup)
	e.POST("/signup_confirmation", instance.SignupConfirmation)
	e.GET("/csrf_token", instance.CSRFToken)
	e.POST("/login", instance.Login)
	e.POST("/logout", instance.Logout)
	e.POST("/account/destroy", instance.AccountDestroy)

	e.GET("/recipes", instance.Recipes)
	recipeG := e.Group("/recipe")
	recipeG.POST("/create", instance.RecipeCreate)
	recipeG.GET("/:recipe_id", instance.Recipe)
	recipeG.POST("/:recipe_id/recipe_tag/associate", instance.TagAssociate)
	recipeG.POST("/:recipe_id/recipe_equipment/associate", instance.EquipmentAssociate)
	recipeG.POST("/:recipe_id/recipe_time/create", instance.TimeCreate)
	recipeG.POST("/:recipe_id/ingredient/associate", instance.IngredientAssociate)
	e.POST("/recipe_title/:recipe_id/update", instance.RecipeTitleUpdate)

	e.GET("/recipe_notes/:recipe_id", instance.RecipeNotes)
	e.POST("/recipe_notes/:recipe_id/update", instance.RecipeNotesUpdate)
	e.POST("/recipe_notes/:recipe_id/destroy", instance.RecipeNotesDestroy)

	e.GET("/recipe_rating/:recipe_id", instance.RecipeRating)
	e.POST("/recipe_rating/:recipe_id/update", instance.RecipeRatingUpdate)
	e.POST("/recipe_rating/:recipe_id/destroy", instance.RecipeRatingDestroy)

	e.GET("/recipe_servings/:recipe_id", instance.RecipeServings)
	e.POST("/recipe_servings/:recipe_id/update", instance.RecipeServingsUpdate)
	e.POST("/recipe_servings/:recipe_id/destroy", instance.RecipeServingsDestroy)

	tagG := e.Group("/recipe_tag")
	tagG.GET("/search", instance.TagSearch)
	tagG.GET("/:tag_id", instance.Tag)
	tagG.POST("/:tag_id/update", instance.TagUpdate)
	tagG.POST("/:tag_id/destroy", instance.TagDestroy)
	tagG.POST("/:tag_id/dissociate/:recipe_id", instance.TagDissociate)
	tagG.POST("/:tag_id/update_for_recipe/:recipe_id", instance.TagUpdateForRecipe)

	equipmentG := e.Group("/recipe_equipment")
	equipmentG.GET("/search", instance.EquipmentSearch)
	equipmentG.GET("/:equipment_id", instance.Equipment)
	equipmentG.POST("/:equipment_id/update", instance.EquipmentUpdate)
	equipmentG.POST("/:equipment_id/destroy", instance.EquipmentDestroy)
	equipmentG.POST("/:equipment_id/dissociate/:recipe_id", instance.EquipmentDissociate)
	equipmentG.POST("/:equipment_id/update_for_recipe/:recipe_id", instance.EquipmentUpdateForRecipe)

	timeG := e.Group("/recipe_time")
	timeG.GET("/:time_id", instance.Time)
	timeG.POST("/:time_id/update", instance.TimeUpdate)
	timeG.POST("/:time_id/destroy", instance.TimeDestroy)

	ingredientG := e.Group("/ingredient")
	ingredientG.GET("/:ingredient_id", instance.Ingredient)
	ingredientG.POST("/:ingredient_id/update", instance.IngredientUpdate)
	ingredientG.POST("/:ingredient_id/destroy", instance.IngredientDestroy)

	e.GET("/ingredient_brand/search", instance.IngredientBrandSearch)
	e.GET("/ingredient_description/search", instance.IngredientDescriptionSearch)
	e.GET("/ingredient_unit/search", instance.IngredientUnitSearch)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	// unmatched paths answer 404 without demanding a session
	e.RouteNotFound("/*", func(c echo.Context) error { return echo.ErrNotFound })

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Handler: func(c echo.Context, reqBody, respBody []byte) {
			logger.Infow("request",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"body", string(censorBody(reqBody)),
			)
		},
	}))

	e.Use(instance.AuthMiddleware)

	e.Validator = &CustomValidator{validator: validator.New()}

	e.HTTPErrorHandler = instance.errorHandler

	return &instance
}

var publicPaths = map[string]bool{
	"/signup":              true,
	"/signup_confirmation": true,
	"/csrf_token":          true,
	"/login":               true,
	"/ping":                true,
	"/*":                   true,
}

// AuthMiddleware resolves the session cookie (or X-Session-Token header)
// into the authenticated user and stores it on the request context. Every
// route outside publicPaths requires it.
func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if publicPaths[c.Path()] {
			return next(c)
		}

		token := ""
		if cookie, err := c.Cookie(sessionCookieName); err == nil {
			token = cookie.Value
		}
		if token == "" {
			token = c.Request().Header.Get("X-Session-Token")
		}
		if token == "" {
			return c.NoContent(http.StatusUnauthorized)
		}

		user, err := s.svc.UserBySessionToken(token)
		if err != nil {
			if !apperr.IsNotFound(err) {
				s.logger.Errorw("resolve session token", "error", err)
			}
			return c.NoContent(http.StatusUnauthorized)
		}

		c.Set("user", user)
		return next(c)
	}
}

// respondErr maps the service error taxonomy onto the fixed HTTP envelope.
func (s *HTTPServer) respondErr(c echo.Context, err error) error {
	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResp{
			Message: validationErr.Message,
			Errors:  validationErr.Fields,
		})
	}

	if apperr.IsNotFound(err) {
		return c.JSON(http.StatusNotFound, ErrorResp{
			Message: "A resource matching your request was not found.",
		})
	}

	var forbiddenErr *apperr.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		return c.JSON(http.StatusForbidden, ErrorResp{Message: forbiddenErr.Message})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	s.logger.Errorw("unexpected error", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, ErrorResp{
		Message: "An error occurred while processing your request.",
	})
}

func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Code == http.StatusNotFound {
			_ = c.JSON(http.StatusNotFound, ErrorResp{
				Message: "A resource matching your request was not found.",
			})
			return
		}
		msg := "Your request was invalid."
		if m, ok := httpErr.Message.(string); ok && m != "" {
			msg = m
		}
		_ = c.JSON(httpErr.Code, ErrorResp{Message: msg})
		return
	}

	_ = s.respondErr(c, err)
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Your request was invalid.")
	}
	if err := c.Validate(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return validationError(fieldErrs)
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Your request was invalid.")
	}
	return nil
}

func validationError(fieldErrs validator.ValidationErrors) error {
	fields := map[string][]string{}
	for _, fieldErr := range fieldErrs {
		field := strings.ToLower(fieldErr.Field())
		msg := "This field is invalid."
		switch fieldErr.Tag() {
		case "required":
			msg = "This field is required."
		case "email":
			msg = "Enter a valid email address."
		case "min":
			msg = "Ensure this field has at least " + fieldErr.Param() + " characters."
		case "max":
			msg = "Ensure this field has no more than " + fieldErr.Param() + " characters."
		}
		fields[field] = append(fields[field], msg)
	}
	return &apperr.ValidationError{
		Message: "The information you provided was invalid.",
		Fields:  fields,
	}
}

func GetUserFromContext(c echo.Context) (*db.User, error) {
	user, ok := c.Get("user").(*db.User)
	if !ok || user == nil {
		return nil, errors.New("no user found in context")
	}
	return user, nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return vv, nil
}

// censorBody blanks credential fields before a request body hits the logs.
func censorBody(body []byte) []byte {
	parsed := map[string]interface{}{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return body
	}
	censored := false
	for _, key := range []string{"password", "token"} {
		if _, ok := parsed[key]; ok {
			parsed[key] = "$censored"
			censored = true
		}
	}
	if !censored {
		return body
	}
	out, err := json.Marshal(parsed)
	if err != nil {
		return body
	}
	return out
}
