// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import "github.com/tomtom215/sommelier/internal/models"

// SampleProducts seed an empty catalog.
var SampleProducts = []ProductInput{
	{
		Name:           "Cabernet Sauvignon",
		Description:    "Bold red wine with rich flavors of blackcurrant, cedar, and tobacco. Full-bodied with firm tannins.",
		Price:          24.99,
		Category:       "Red Wine",
		Tags:           "full-bodied,tannic,blackcurrant,cedar",
		Country:        models.StringPtr("France"),
		AlcoholContent: models.StringPtr("14.5"),
	},
	{
		Name:           "Chardonnay",
		Description:    "Versatile white wine with notes of apple, pear, and vanilla. Medium to full-bodied with a buttery finish.",
		Price:          19.99,
		Category:       "White Wine",
		Tags:           "medium-bodied,apple,vanilla,buttery",
		Country:        models.StringPtr("United States"),
		AlcoholContent: models.StringPtr("13.0"),
	},
	{
		Name:           "Pinot Noir",
		Description:    "Elegant red wine with cherry, raspberry, and earthy mushroom notes. Light to medium-bodied with silky tannins.",
		Price:          27.99,
		Category:       "Red Wine",
		Tags:           "light-bodied,cherry,raspberry,silky",
		Country:        models.StringPtr("France"),
		AlcoholContent: models.StringPtr("13.5"),
	},
}
