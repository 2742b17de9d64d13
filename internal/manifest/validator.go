package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/library.schema.json
var schemaBytes []byte

var printer = message.NewPrinter(language.English)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation. Path is the JSON pointer of the
// offending value, e.g. "/preloadedDependencies/0/majorVersion"; it is empty
// for document-level problems.
type ValidationIssue struct {
	Path    string
	Message string
	Keyword string
}

// Error joins the issues into one message, for callers that treat an
// invalid manifest as a hard failure.
func (r *ValidationResult) Error() string {
	parts := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return strings.Join(parts, "; ")
}

// librarySchema is the compiled library.json schema, built on first use.
var librarySchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	const url = "library.schema.json"

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding embedded schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("registering embedded schema: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling embedded schema: %w", err)
	}
	return sch, nil
})

// Validate checks raw library.json bytes against the schema. A non-nil error
// means the input is not JSON or the schema is broken; schema violations are
// reported in the result.
func Validate(data []byte) (*ValidationResult, error) {
	sch, err := librarySchema()
	if err != nil {
		return nil, err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	var verr *jsonschema.ValidationError
	switch err := sch.Validate(doc); {
	case err == nil:
		return &ValidationResult{Valid: true}, nil
	case errors.As(err, &verr):
		return &ValidationResult{Issues: issuesOf(verr)}, nil
	default:
		return nil, fmt.Errorf("validating %s: %w", FileName, err)
	}
}

// ValidateFile validates the library.json at path.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// issuesOf flattens the error tree into its leaves, dropping container
// keywords and repeats. A tree without usable leaves yields its root message.
func issuesOf(root *jsonschema.ValidationError) []ValidationIssue {
	var (
		issues []ValidationIssue
		seen   = map[ValidationIssue]bool{}
		stack  = []*jsonschema.ValidationError{root}
	)
	for len(stack) > 0 {
		ve := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(ve.Causes) > 0 {
			// Push in reverse so causes are visited in schema order.
			for i := len(ve.Causes) - 1; i >= 0; i-- {
				stack = append(stack, ve.Causes[i])
			}
			continue
		}

		issue := leafIssue(ve)
		if issue.Keyword == "allOf" || issue.Keyword == "$ref" || seen[issue] {
			continue
		}
		seen[issue] = true
		issues = append(issues, issue)
	}

	if len(issues) == 0 {
		return []ValidationIssue{{Message: root.Error()}}
	}
	return issues
}

func leafIssue(ve *jsonschema.ValidationError) ValidationIssue {
	var issue ValidationIssue
	if len(ve.InstanceLocation) > 0 {
		issue.Path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	if ve.ErrorKind != nil {
		if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
			issue.Keyword = kw[len(kw)-1]
		}
		issue.Message = ve.ErrorKind.LocalizedString(printer)
	}
	return issue
}
