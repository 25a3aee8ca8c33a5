package config

import (
	"fmt"
	"regexp"
)

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding from ValidatePipeline. Path points into the config
// structure (e.g. "stages[1].options.pattern").
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

// knownCodecs mirrors the codecs the I/O layer accepts.
var knownCodecs = map[string]bool{
	"": true, "none": true, "gzip": true, "gz": true, "xz": true,
}

// stageKinds enumerates the operations the runner can build.
var stageKinds = map[string]bool{
	"filter": true, "ifempty": true, "unique": true, "lift": true,
}

// ValidatePipeline checks a pipeline config for structural problems before
// anything is opened or run. It returns all findings rather than stopping at
// the first, so a config file can be fixed in one pass. Errors make the
// pipeline unrunnable; warnings do not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	errf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf(format, a...)})
	}
	warnf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf(format, a...)})
	}

	if p.Job == "" {
		warnf("job", "job name is empty; logs and metrics will use a generic label")
	}

	if p.Source.Path == "" {
		errf("source.path", "source path is required")
	}
	if !knownCodecs[p.Source.Codec] {
		errf("source.codec", "unknown codec %q (want none, gzip, or xz)", p.Source.Codec)
	}

	if p.Sink.Path == "" {
		errf("sink.path", "sink path is required")
	}
	if !knownCodecs[p.Sink.Codec] {
		errf("sink.codec", "unknown codec %q (want none, gzip, or xz)", p.Sink.Codec)
	}
	if p.Sink.Atomic && p.Sink.Path == "-" {
		warnf("sink.atomic", "atomic write is ignored for stdout")
	}

	if len(p.Stages) == 0 {
		warnf("stages", "no stages configured; the pipeline will only copy rows")
	}

	for i, st := range p.Stages {
		path := fmt.Sprintf("stages[%d]", i)
		if !stageKinds[st.Kind] {
			errf(path+".kind", "unknown stage kind %q", st.Kind)
			continue
		}
		switch st.Kind {
		case "filter":
			if st.Options.String("column", "") == "" {
				errf(path+".options.column", "filter requires a column")
			}
			pat := st.Options.String("pattern", "")
			if pat == "" {
				errf(path+".options.pattern", "filter requires a pattern")
			} else if st.Options.Bool("regex", true) {
				if _, err := regexp.Compile(pat); err != nil {
					errf(path+".options.pattern", "invalid regex: %v", err)
				}
			}
		case "ifempty":
			if len(st.Options.StringSlice("columns")) == 0 {
				errf(path+".options.columns", "ifempty requires at least one column")
			}
			if m := st.Options.String("mode", "any"); m != "any" && m != "all" {
				errf(path+".options.mode", "mode must be \"any\" or \"all\", got %q", m)
			}
		case "unique":
			if len(st.Options.StringSlice("columns")) == 0 {
				errf(path+".options.columns", "unique requires at least one key column")
			}
		case "lift":
			if st.Options.String("label_file", "") == "" {
				errf(path+".options.label_file", "lift requires a label file")
			}
			if len(st.Options.StringSlice("columns")) == 0 {
				errf(path+".options.columns", "lift requires at least one column to lift")
			}
			if !knownCodecs[st.Options.String("codec", "")] {
				errf(path+".options.codec", "unknown codec %q", st.Options.String("codec", ""))
			}
		}
	}

	if p.Metrics.Backend != "" && p.Metrics.Backend != "none" && p.Metrics.Backend != "pushgateway" {
		errf("metrics.backend", "unknown metrics backend %q", p.Metrics.Backend)
	}
	if p.Metrics.Backend == "pushgateway" && p.Metrics.URL == "" {
		warnf("metrics.url", "pushgateway backend without a URL; default http://localhost:9091 will be used")
	}

	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
