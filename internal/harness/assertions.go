package harness

import (
	"fmt"
	"slices"
	"strings"
)

// ExpectationError describes one failed expectation.
type ExpectationError struct {
	Check    string
	Expected string
	Actual   string
	XML      string
}

func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.XML != "" {
		fmt.Fprintf(&buf, "\nFinal document:\n%s\n", e.XML)
	}
	return buf.String()
}

// EvaluateExpect checks expect against result and returns one message per
// failed check, in the order the checks are listed on Expect.
func EvaluateExpect(result *Result, expect Expect) []string {
	var errs []string
	fail := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	fail(expectXML(result, expect.XML))
	for _, sub := range expect.Contains {
		fail(expectContains(result, sub))
	}
	for _, sub := range expect.NotContains {
		fail(expectNotContains(result, sub))
	}
	fail(expectFields(result, expect.Fields))
	fail(expectEntity(result, expect.Entity))
	fail(expectCount("emitted", len(result.Emitted), expect.Emitted))
	fail(expectCount("conditions", result.Conditions, expect.Conditions))
	return errs
}

func expectXML(result *Result, want string) error {
	if want == "" {
		return nil
	}
	want = strings.TrimRight(want, "\n")
	if result.XML == want {
		return nil
	}
	return &ExpectationError{Check: "xml", Expected: want, Actual: result.XML}
}

func expectContains(result *Result, sub string) error {
	if strings.Contains(result.XML, sub) {
		return nil
	}
	return &ExpectationError{
		Check:    "contains",
		Expected: fmt.Sprintf("document containing %q", sub),
		Actual:   "not found",
		XML:      result.XML,
	}
}

func expectNotContains(result *Result, sub string) error {
	if !strings.Contains(result.XML, sub) {
		return nil
	}
	return &ExpectationError{
		Check:    "not_contains",
		Expected: fmt.Sprintf("document without %q", sub),
		Actual:   "found",
		XML:      result.XML,
	}
}

func expectFields(result *Result, want []string) error {
	if want == nil || slices.Equal(result.Fields, want) {
		return nil
	}
	return &ExpectationError{
		Check:    "fields",
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", result.Fields),
	}
}

func expectEntity(result *Result, want string) error {
	if want == "" || result.Entity == want {
		return nil
	}
	return &ExpectationError{Check: "entity", Expected: want, Actual: result.Entity}
}

func expectCount(check string, got int, want *int) error {
	if want == nil || got == *want {
		return nil
	}
	return &ExpectationError{
		Check:    check,
		Expected: fmt.Sprintf("%d", *want),
		Actual:   fmt.Sprintf("%d", got),
	}
}
