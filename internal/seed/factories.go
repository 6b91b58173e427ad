package seed

import (
	"fmt"
	"math/rand"
	"time"

	"capsort/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gosimple/slug"
)

var titleSuffixes = []string{
	"Monitoring System", "Management Platform", "Analytics Engine",
	"Framework", "Automation Suite", "Design Study",
}

// FileURL builds the placeholder document location for a title.
func FileURL(title string) string {
	return fmt.Sprintf("https://example.com/%s.pdf", slug.Make(title))
}

// Factory builds fake domain records for seeding.
type Factory struct {
	faker  *gofakeit.Faker
	rng    *rand.Rand
	fields []string
	now    func() time.Time
}

// NewFactory returns a factory drawing fields from fields. A zero seed
// picks a time-based one.
func NewFactory(seed int64, fields []string) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if len(fields) == 0 {
		fields = []string{"IoT", "Database"}
	}
	return &Factory{
		faker: gofakeit.New(seed),
		// #nosec G404: acceptable for seeding
		rng:    rand.New(rand.NewSource(seed)),
		fields: fields,
		now:    time.Now,
	}
}

// Project builds an active project uploaded by uploaderID.
func (f *Factory) Project(uploaderID uint, overrides ...func(*models.Project)) *models.Project {
	field := f.fields[f.rng.Intn(len(f.fields))]
	title := fmt.Sprintf("%s %s %s", f.faker.AppName(), field, f.faker.RandomString(titleSuffixes))

	p := &models.Project{
		Title:      title,
		Author:     f.faker.Name(),
		Year:       f.faker.Number(2020, f.now().Year()),
		Field:      field,
		FileURL:    FileURL(title),
		UploadedBy: uploaderID,
		Status:     models.ProjectStatusActive,
	}
	for _, override := range overrides {
		override(p)
	}
	return p
}

// Pick returns n distinct indexes below total, or all of them when n >= total.
func (f *Factory) Pick(total, n int) []int {
	perm := f.rng.Perm(total)
	if n < total {
		perm = perm[:n]
	}
	return perm
}

// Between returns a number in [lo, hi].
func (f *Factory) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + f.rng.Intn(hi-lo+1)
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return f.rng.Float64() < p
}
