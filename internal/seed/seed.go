// Package seed fills an empty store with the demo researchers and posts.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/sciencehub/sciencehub-api/internal/posts"
	"github.com/sciencehub/sciencehub-api/internal/users"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

type demoPost struct {
	author    int
	content   string
	timestamp time.Time
	likes     int
	shares    int
	tags      []string
	images    []string
}

func strPtr(s string) *string { return &s }

var demoUsers = []users.CreateUserRequest{
	{
		Name:         "Dr Anna Kowalska",
		Avatar:       strPtr("https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=150&h=150&fit=crop"),
		Title:        "Profesor Fizyki Kwantowej",
		Bio:          "Specjalistka od splątania kwantowego i edukatorka naukowa.",
		Institution:  "Uniwersytet Warszawski",
		Publications: 47,
		Followers:    1250,
		Following:    320,
	},
	{
		Name:         "Prof. Jan Nowak",
		Avatar:       strPtr("https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop"),
		Title:        "Kierownik Katedry Biotechnologii",
		Bio:          "Badacz w dziedzinie biotechnologii i inżynierii genetycznej.",
		Institution:  "Politechnika Gdańska",
		Publications: 89,
		Followers:    2100,
		Following:    450,
	},
	{
		Name:         "Dr Katarzyna Wiśniewska",
		Avatar:       strPtr("https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=150&h=150&fit=crop"),
		Title:        "Badaczka AI i Machine Learning",
		Bio:          "Tworzy modele AI do przewidywania zmian klimatu.",
		Institution:  "AGH Kraków",
		Publications: 34,
		Followers:    980,
		Following:    210,
	},
}

var demoPosts = []demoPost{
	{
		author:    0,
		content:   "Najnowsze odkrycia w dziedzinie splątania kwantowego wskazują na 40% poprawę efektywności obliczeń.",
		timestamp: time.Date(2024, 11, 15, 10, 30, 0, 0, time.UTC),
		likes:     127,
		shares:    23,
		tags:      []string{"Fizyka Kwantowa", "Badania", "Technologia"},
		images:    []string{"https://images.unsplash.com/photo-1755455840466-85747052a634?auto=format&w=1080"},
	},
	{
		author:    1,
		content:   "Przełomowe wyniki terapii genowej CRISPR-Cas9 opublikowane w Nature.",
		timestamp: time.Date(2024, 11, 14, 14, 20, 0, 0, time.UTC),
		likes:     243,
		shares:    56,
		tags:      []string{"Biotechnologia", "CRISPR", "Medycyna"},
		images:    []string{"https://images.unsplash.com/photo-1676206584909-c373cf61cefc?auto=format&w=1080"},
	},
	{
		author:    2,
		content:   "Model AI do przewidywania zmian klimatu osiągnął dokładność 94%.",
		timestamp: time.Date(2024, 11, 16, 9, 15, 0, 0, time.UTC),
		likes:     189,
		shares:    34,
		tags:      []string{"AI", "Klimat", "Machine Learning"},
		images:    []string{},
	},
}

// Run inserts the demo data when the user store is empty. It reports whether
// anything was written.
func Run(ctx context.Context, userRepo users.Repository, postRepo posts.Repository, logger *logging.Logger) (bool, error) {
	if logger == nil {
		logger = logging.Default()
	}
	n, err := userRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	ids := make([]int64, 0, len(demoUsers))
	for i := range demoUsers {
		req := demoUsers[i]
		u, err := userRepo.Create(ctx, &req)
		if err != nil {
			return false, fmt.Errorf("seed: create user %q: %w", req.Name, err)
		}
		ids = append(ids, u.ID)
	}

	for _, p := range demoPosts {
		_, err := postRepo.Create(ctx, &posts.Record{
			AuthorID:  ids[p.author],
			Content:   p.content,
			Timestamp: p.timestamp,
			Likes:     p.likes,
			Shares:    p.shares,
			Tags:      p.tags,
			Images:    p.images,
		})
		if err != nil {
			return false, fmt.Errorf("seed: create post: %w", err)
		}
	}

	logger.Info("seeded demo data", "users", len(demoUsers), "posts", len(demoPosts))
	return true, nil
}
