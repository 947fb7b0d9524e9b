// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/spevnik/internal/core/category"
)

func TestMatches(t *testing.T) {
	joined := category.Join([]string{"advent", "detské"})

	assert.True(t, category.Matches(joined, "advent"))
	assert.True(t, category.Matches(joined, "ADVENT"))
	assert.True(t, category.Matches(joined, "detské"))
	assert.False(t, category.Matches(joined, "vianoce"))
	assert.False(t, category.Matches(joined, ""))
	assert.False(t, category.Matches("", "advent"))
}

func TestCatalogOrderIsStable(t *testing.T) {
	assert.Equal(t, "stále omšové spevy", category.Catalog[0])
	assert.Equal(t, "nevhodné", category.Catalog[len(category.Catalog)-1])
	assert.Len(t, category.Catalog, 23)
}
