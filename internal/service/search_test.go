package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-back/internal/db"
)

func seedTags(t *testing.T, svc *Service, user *db.User, recipe *db.Recipe, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := svc.TagAssociate(user, recipe.ID, name)
		require.NoError(t, err)
	}
}

func TestTagSearch(t *testing.T) {
	t.Run("orders by match length", func(t *testing.T) {
		svc, gdb, _ := newTestService(t)
		user := createUser(t, gdb, "alice")
		recipe := createRecipe(t, gdb, user, "Roast chicken")
		seedTags(t, svc, user, recipe, "frying pan", "pan", "sauce pan")

		got, err := svc.TagSearch(user, "pan")
		require.NoError(t, err)
		assert.Equal(t, []string{"pan", "sauce pan", "frying pan"}, got)
	})

	t.Run("case-insensitive substring", func(t *testing.T) {
		svc, gdb, _ := newTestService(t)
		user := createUser(t, gdb, "alice")
		recipe := createRecipe(t, gdb, user, "Roast chicken")
		seedTags(t, svc, user, recipe, "Dinner", "weekend dinners", "breakfast")

		got, err := svc.TagSearch(user, "DIN")
		require.NoError(t, err)
		assert.Equal(t, []string{"Dinner", "weekend dinners"}, got)
	})

	t.Run("empty term returns nothing", func(t *testing.T) {
		svc, gdb, _ := newTestService(t)
		user := createUser(t, gdb, "alice")
		recipe := createRecipe(t, gdb, user, "Roast chicken")
		seedTags(t, svc, user, recipe, "dinner")

		got, err := svc.TagSearch(user, "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("caps results at ten", func(t *testing.T) {
		svc, gdb, _ := newTestService(t)
		user := createUser(t, gdb, "alice")
		recipe := createRecipe(t, gdb, user, "Roast chicken")
		for i := 0; i < 15; i++ {
			seedTags(t, svc, user, recipe, fmt.Sprintf("dinner idea %02d", i))
		}

		got, err := svc.TagSearch(user, "dinner")
		require.NoError(t, err)
		assert.Len(t, got, 10)
	})

	t.Run("equal lengths keep insertion order", func(t *testing.T) {
		svc, gdb, _ := newTestService(t)
		user := createUser(t, gdb, "alice")
		recipe := createRecipe(t, gdb, user, "Roast chicken")
		seedTags(t, svc, user, recipe, "pan b", "pan a", "pan c")

		got, err := svc.TagSearch(user, "pan")
		require.NoError(t, err)
		assert.Equal(t, []string{"pan b", "pan a", "pan c"}, got)
	})

	t.Run("escapes like wildcards", func(t *testing.T) {
		svc, gdb, _ := newTestService(t)
		user := createUser(t, gdb, "alice")
		recipe := createRecipe(t, gdb, user, "Roast chicken")
		seedTags(t, svc, user, recipe, "100% whole wheat", "100 grams")

		got, err := svc.TagSearch(user, "100%")
		require.NoError(t, err)
		assert.Equal(t, []string{"100% whole wheat"}, got)
	})

	t.Run("scoped to the user", func(t *testing.T) {
		svc, gdb, _ := newTestService(t)
		alice := createUser(t, gdb, "alice")
		bob := createUser(t, gdb, "bob")
		aliceRecipe := createRecipe(t, gdb, alice, "Roast chicken")
		bobRecipe := createRecipe(t, gdb, bob, "Pot pie")
		seedTags(t, svc, alice, aliceRecipe, "dinner")
		seedTags(t, svc, bob, bobRecipe, "dinner party")

		got, err := svc.TagSearch(alice, "dinner")
		require.NoError(t, err)
		assert.Equal(t, []string{"dinner"}, got)
	})
}
