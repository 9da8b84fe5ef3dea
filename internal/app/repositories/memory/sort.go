package memory

import (
	"cmp"
	"slices"

	"github.com/yigit/classroom/internal/app/models"
)

func sortUploads(list []models.Upload) {
	slices.SortFunc(list, func(a, b models.Upload) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.OriginalName, b.OriginalName)
	})
}

func byName(a, b models.UserSummary) int {
	if c := cmp.Compare(a.LastName, b.LastName); c != 0 {
		return c
	}
	return cmp.Compare(a.FirstName, b.FirstName)
}
