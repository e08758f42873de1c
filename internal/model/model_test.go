package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input   string
		want    Severity
		wantErr bool
	}{
		{"info", SeverityInfo, false},
		{"WARN", SeverityWarning, false},
		{" Warning ", SeverityWarning, false},
		{"error", SeverityError, false},
		{"Fatal", SeverityFatal, false},
		{"critical", SeverityInfo, true},
		{"", SeverityInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseSeverity(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeverity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSeverity_JSON(t *testing.T) {
	data, err := json.Marshal(Finding{RuleID: "fact.missing_name", Severity: SeverityError, Message: "m"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"rule_id":"fact.missing_name","severity":"error","message":"m"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var f Finding
	if err := json.Unmarshal([]byte(`{"severity":"warning"}`), &f); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if f.Severity != SeverityWarning {
		t.Errorf("Expected warning, got %v", f.Severity)
	}
	if err := json.Unmarshal([]byte(`{"severity":"loud"}`), &f); err == nil {
		t.Error("Expected error for unknown severity")
	}
}

func TestSubject_String(t *testing.T) {
	var none *Subject
	tests := []struct {
		subject *Subject
		want    string
	}{
		{none, "document"},
		{&Subject{Kind: SubjectDocument}, "document"},
		{&Subject{Kind: SubjectContext, ID: "C1", Index: 2}, "context #2 (id C1)"},
		{&Subject{Kind: SubjectUnit, Index: 0}, "unit #0"},
		{FactSubject(Fact{Concept: "ifrs-full:Revenue", ID: "f1", Index: 4}), "fact #4 ifrs-full:Revenue (id f1)"},
		{&Subject{Kind: SubjectConcept, Concept: "ifrs-full:NameOfReportingEntityOrOtherMeansOfIdentification"},
			"concept #0 ifrs-full:NameOfReportingEntityOrOtherMeansOfIdentification"},
	}

	for _, tt := range tests {
		if got := tt.subject.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSummarizeAndIsValid(t *testing.T) {
	findings := []Finding{
		{RuleID: "a", Severity: SeverityWarning},
		{RuleID: "a", Severity: SeverityWarning},
		{RuleID: "b", Severity: SeverityInfo},
	}

	s := Summarize(findings)
	if s.Total != 3 || s.Warnings != 2 || s.Info != 1 || s.Errors != 0 {
		t.Errorf("Unexpected summary %+v", s)
	}
	if s.ByRule["a"] != 2 || s.ByRule["b"] != 1 {
		t.Errorf("Unexpected per-rule counts %v", s.ByRule)
	}
	if !IsValid(findings) {
		t.Error("Expected warnings alone to keep the report valid")
	}

	findings = append(findings, Finding{RuleID: "c", Severity: SeverityError})
	if IsValid(findings) {
		t.Error("Expected an error finding to invalidate the report")
	}

	if empty := Summarize(nil); empty.Total != 0 || empty.ByRule != nil {
		t.Errorf("Expected empty summary, got %+v", empty)
	}
}

func TestReport_Status(t *testing.T) {
	tests := []struct {
		report Report
		want   string
	}{
		{Report{Valid: true}, "VALID"},
		{Report{Valid: true, Summary: Summary{Warnings: 1}}, "VALID (with warnings)"},
		{Report{Valid: false, Summary: Summary{Errors: 1}}, "INVALID"},
		{Report{Valid: false, Summary: Summary{Fatal: 1}}, "FATAL"},
	}

	for _, tt := range tests {
		if got := tt.report.Status(); got != tt.want {
			t.Errorf("Status() = %q, want %q", got, tt.want)
		}
	}
}

func TestDefect(t *testing.T) {
	d := DefectMissingID | DefectInvalidPeriod

	if !d.Has(DefectMissingID) || d.Has(DefectMissingPeriod) {
		t.Errorf("Has() wrong for %v", d)
	}
	if d.Has(0) {
		t.Error("Expected Has(0) to be false")
	}
	if got := d.String(); got != "missing_id,invalid_period" {
		t.Errorf("String() = %q", got)
	}
	if Defect(0).Incomplete() || Defect(0).String() != "none" {
		t.Error("Expected zero defect to be complete")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2023-12-31", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{" 2023-01-01 ", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"2023-01-01Z", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"2023-06-30T23:59:59", time.Date(2023, 6, 30, 23, 59, 59, 0, time.UTC), false},
		{"2023-06-30T00:00:00Z", time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), false},
		{"2023-02-30", time.Time{}, true},
		{"31/12/2023", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		m        Measure
		divide   bool
		complete bool
		str      string
	}{
		{Measure{Simple: "iso4217:EUR"}, false, true, "iso4217:EUR"},
		{Measure{Numerator: "iso4217:EUR", Denominator: "xbrli:shares"}, true, true, "iso4217:EUR/xbrli:shares"},
		{Measure{Numerator: "iso4217:EUR"}, true, false, "iso4217:EUR/"},
		{Measure{}, false, false, ""},
	}

	for _, tt := range tests {
		if tt.m.IsDivide() != tt.divide || tt.m.Complete() != tt.complete || tt.m.String() != tt.str {
			t.Errorf("Measure %+v: divide=%v complete=%v str=%q", tt.m, tt.m.IsDivide(), tt.m.Complete(), tt.m.String())
		}
	}
}

func TestLabels(t *testing.T) {
	if got := (Context{ID: "C1"}).Label(); got != `context "C1"` {
		t.Errorf("Context label = %q", got)
	}
	if got := (Unit{Index: 1}).Label(); got != "unit #2" {
		t.Errorf("Unit label = %q", got)
	}
	if got := (Fact{Kind: ItemNonFraction, Index: 0}).Label(); got != "unnamed nonFraction fact #1" {
		t.Errorf("Fact label = %q", got)
	}
	if got := (Period{Kind: PeriodDuration, RawStart: "2023-01-01", RawEnd: "2023-12-31"}).String(); got != "duration 2023-01-01..2023-12-31" {
		t.Errorf("Period string = %q", got)
	}
}
