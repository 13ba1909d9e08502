package course

import (
	"fmt"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/util"
)

// SetRelation statically binds a title to a catalog course, bypassing any
// fuzzy resolution on subsequent lookups.
func SetRelation(title string, c *Course) error {
	err := relationCacher.Set(normalizedTitle(title), c.ID)
	if err != nil {
		return err
	}
	return idCacher.Set(c.ID, c)
}

// FindClosest returns the catalog course whose title is closest to the given
// one. Titles coming from external references (history entries, deep links)
// rarely match the catalog verbatim, so results are narrowed with fuzzy
// matching and ranked by Levenshtein distance.
func FindClosest(title string) (*Course, error) {
	title = normalizedTitle(title)
	return findClosest(title, title, 0, 3)
}

func findClosest(title, originalTitle string, try, limit int) (*Course, error) {
	if try >= limit {
		err := fmt.Errorf("no courses found in the catalog for %s", title)
		log.Error(err)
		_ = failCacher.Set(originalTitle, true)
		return nil, err
	}

	if failed := failCacher.Get(title); failed.IsPresent() && failed.MustGet() {
		return nil, fmt.Errorf("no courses found in the catalog for %s", title)
	}

	if id := relationCacher.Get(title); id.IsPresent() {
		if course, ok := idCacher.Get(id.MustGet()).Get(); ok {
			if try > 0 {
				_ = relationCacher.Set(originalTitle, course.ID)
			}
			return course, nil
		}

		// The cached relation exists but the metadata record is gone,
		// suggesting the course was unpublished. Drop the stale binding.
		_ = relationCacher.Delete(title)
		log.Infof("Course %s disappeared from the catalog", id.MustGet())
	}

	courses, err := Search(title)
	if err != nil {
		log.Error(err)
		return nil, err
	}

	// Narrow to plausible candidates before ranking by edit distance.
	candidates := lo.Filter(courses, func(c *Course, _ int) bool {
		return fuzzy.MatchNormalizedFold(title, normalizedTitle(c.Title))
	})
	if len(candidates) == 0 {
		candidates = courses
	}

	if len(candidates) == 0 {
		// No matches; retry with reduced query specificity.
		words := strings.Split(title, " ")
		if len(words) <= 2 {
			return findClosest(title, originalTitle, limit, limit)
		}

		alternate := strings.Join(words[:util.Max(len(words)-1, 1)], " ")
		log.Infof(`No catalog results for "%s", trying "%s"`, title, alternate)
		return findClosest(alternate, originalTitle, try+1, limit)
	}

	closest := lo.MinBy(candidates, func(a, b *Course) bool {
		return levenshtein.Distance(title, normalizedTitle(a.Title)) <
			levenshtein.Distance(title, normalizedTitle(b.Title))
	})

	log.Info("Found closest match: " + closest.Title)

	save := func(t string) {
		if id := relationCacher.Get(t); id.IsAbsent() {
			_ = relationCacher.Set(t, closest.ID)
		}
	}
	save(title)
	save(originalTitle)

	_ = idCacher.Set(closest.ID, closest)
	return closest, nil
}
