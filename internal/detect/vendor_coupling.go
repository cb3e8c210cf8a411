package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "vendor_coupling",
		Name:           "Vendor Coupling Detector",
		Description:    "Detects third-party packages used directly across many files",
		DefaultEnabled: false,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &vendorCouplingDetector{} })
}

type vendorCouplingDetector struct{}

func (d *vendorCouplingDetector) Info() Info {
	info, _ := InfoFor("vendor_coupling")
	return info
}

func (d *vendorCouplingDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("vendor_coupling")
	if rule == nil {
		return nil
	}
	maxFiles := rule.IntOption("max_files_per_package", 10)

	sets := map[string]map[string]bool{}
	for path, symbols := range ctx.FileSymbols {
		fileRule := ctx.RuleForFile("vendor_coupling", path)
		if fileRule == nil {
			continue
		}
		ignore := fileRule.StringsOption("ignore_packages", []string{"react", "lodash"})
		for _, imp := range symbols.Imports {
			if !externalPackage(imp.Source) {
				continue
			}
			pkg := packageName(imp.Source)
			if ignoredPackage(pkg, ignore) {
				continue
			}
			if sets[pkg] == nil {
				sets[pkg] = map[string]bool{}
			}
			sets[pkg][path] = true
		}
	}

	var packages []string
	for pkg := range sets {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)

	var smells []ArchSmell
	for _, pkg := range packages {
		if len(sets[pkg]) <= maxFiles {
			continue
		}
		var files []string
		for f := range sets[pkg] {
			files = append(files, f)
		}
		sort.Strings(files)
		smells = append(smells, ArchSmell{
			Kind:     KindVendorCoupling,
			Severity: rule.Severity,
			Files:    files,
			Metrics:  []Metric{NumMetric("count", float64(len(files)))},
			Details:  Details{Package: pkg, Count: len(files)},
		})
	}
	return smells
}
