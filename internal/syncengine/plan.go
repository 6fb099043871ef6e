package syncengine

import (
	"path/filepath"

	"github.com/joe/mirror-tree/pkg/filesystem"
)

// CopyTask describes one pending copy from the input tree to the output tree.
type CopyTask struct {
	Source string // absolute path in the input tree
	Dest   string // absolute path in the output tree
	Path   string // relative path, used for reporting
	Size   int64
}

// Plan is the result of diffing the two enumerations.
type Plan struct {
	// Copies are the files that must be written: absent from the output
	// set, or present but reported non-equivalent by the comparator.
	Copies []CopyTask

	// Skipped are files already equivalent at the destination.
	Skipped []string

	// Stale are output paths whose relative path is absent from the input
	// set. They are deleted when cleanup is enabled.
	Stale []string

	// CompareErrors records comparator failures. Each is scoped to its
	// single file, which is scheduled for copy regardless.
	CompareErrors []ItemError
}

// BuildPlan combines the two enumerations and the comparator into the set
// of copy tasks and the set of stale output paths.
//
// A comparator error never aborts the plan: the affected file defaults to
// "copy" and planning continues for the remaining files.
func BuildPlan(
	input, output map[string]filesystem.FileInfo,
	inputRoot, outputRoot string,
	cmp Comparator,
) *Plan {
	plan := &Plan{}

	for rel, info := range input {
		if info.IsDir {
			continue
		}

		task := CopyTask{
			Source: filepath.Join(inputRoot, filepath.FromSlash(rel)),
			Dest:   filepath.Join(outputRoot, filepath.FromSlash(rel)),
			Path:   rel,
			Size:   info.Size,
		}

		if _, exists := output[rel]; !exists {
			plan.Copies = append(plan.Copies, task)
			continue
		}

		equivalent, err := cmp.Equivalent(task.Source, task.Dest)
		if err != nil {
			plan.CompareErrors = append(plan.CompareErrors, ItemError{
				Phase: PhasePlan,
				Path:  rel,
				Err:   err,
			})
			plan.Copies = append(plan.Copies, task)

			continue
		}

		if equivalent {
			plan.Skipped = append(plan.Skipped, rel)
		} else {
			plan.Copies = append(plan.Copies, task)
		}
	}

	for rel, info := range output {
		if info.IsDir {
			continue
		}

		if _, exists := input[rel]; !exists {
			plan.Stale = append(plan.Stale, rel)
		}
	}

	return plan
}

// BytesToCopy sums the sizes of all scheduled copy tasks.
func (p *Plan) BytesToCopy() int64 {
	var total int64
	for _, task := range p.Copies {
		total += task.Size
	}

	return total
}
