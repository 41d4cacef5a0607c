package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-back/internal/apperr"
)

func TestRecipeCreateAndList(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	first, err := svc.RecipeCreate(alice, "Roast chicken")
	require.NoError(t, err)
	second, err := svc.RecipeCreate(alice, "Pot pie")
	require.NoError(t, err)
	_, err = svc.RecipeCreate(bob, "Ramen")
	require.NoError(t, err)

	got, err := svc.RecipeList(alice)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	_, err = svc.RecipeCreate(alice, "")
	assert.True(t, apperr.IsValidation(err))
}

func TestRecipeGet(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	user := createUser(t, gdb, "alice")
	recipe := createRecipe(t, gdb, user, "Roast chicken")

	_, err := svc.TagAssociate(user, recipe.ID, "dinner")
	require.NoError(t, err)
	_, err = svc.EquipmentAssociate(user, recipe.ID, "Dutch oven")
	require.NoError(t, err)

	got, err := svc.RecipeGet(user, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roast chicken", got.Title)
	assert.Len(t, got.Tags, 1)
	assert.Len(t, got.Equipment, 1)

	other := createUser(t, gdb, "bob")
	_, err = svc.RecipeGet(other, recipe.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestRecipeTitleUpdate(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	user := createUser(t, gdb, "alice")
	recipe := createRecipe(t, gdb, user, "Roast chicken")

	require.NoError(t, svc.RecipeTitleUpdate(user, recipe.ID, "Braised chicken"))

	got, err := svc.RecipeGet(user, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Braised chicken", got.Title)

	assert.True(t, apperr.IsValidation(svc.RecipeTitleUpdate(user, recipe.ID, "  ")))
}

func TestRecipeNotes(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	user := createUser(t, gdb, "alice")
	recipe := createRecipe(t, gdb, user, "Roast chicken")

	notes, err := svc.RecipeNotesGet(user, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)

	require.NoError(t, svc.RecipeNotesUpdate(user, recipe.ID, "Rest 15 minutes before carving."))
	notes, err = svc.RecipeNotesGet(user, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rest 15 minutes before carving.", notes)

	require.NoError(t, svc.RecipeNotesDestroy(user, recipe.ID))
	notes, err = svc.RecipeNotesGet(user, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestRecipeRating(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	user := createUser(t, gdb, "alice")
	recipe := createRecipe(t, gdb, user, "Roast chicken")

	rating, err := svc.RecipeRatingGet(user, recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, rating)

	require.NoError(t, svc.RecipeRatingUpdate(user, recipe.ID, 4))
	rating, err = svc.RecipeRatingGet(user, recipe.ID)
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 4, *rating)

	assert.True(t, apperr.IsValidation(svc.RecipeRatingUpdate(user, recipe.ID, 0)))
	assert.True(t, apperr.IsValidation(svc.RecipeRatingUpdate(user, recipe.ID, 6)))

	require.NoError(t, svc.RecipeRatingDestroy(user, recipe.ID))
	rating, err = svc.RecipeRatingGet(user, recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, rating)
}

func TestRecipeServings(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	user := createUser(t, gdb, "alice")
	recipe := createRecipe(t, gdb, user, "Roast chicken")

	servings, err := svc.RecipeServingsGet(user, recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, servings)

	require.NoError(t, svc.RecipeServingsUpdate(user, recipe.ID, 4.5))
	servings, err = svc.RecipeServingsGet(user, recipe.ID)
	require.NoError(t, err)
	require.NotNil(t, servings)
	assert.Equal(t, 4.5, *servings)

	assert.True(t, apperr.IsValidation(svc.RecipeServingsUpdate(user, recipe.ID, -1)))

	require.NoError(t, svc.RecipeServingsDestroy(user, recipe.ID))
	servings, err = svc.RecipeServingsGet(user, recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, servings)
}
