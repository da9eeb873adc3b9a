// Package templates renders the markdown skeletons for plan documents.
// Rendering is pure: no I/O, no dependency on the catalog, and output is
// deterministic given identical params except where a zero Date falls back
// to the current day.
package templates

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func renderDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(dateLayout)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// SprintParams configures a sprint planning document.
type SprintParams struct {
	Milestone int
	Sprint    int
	Title     string
	Goal      string
	Date      time.Time
}

// Sprint renders an M##_S## sprint document. Zero milestone/sprint numbers
// default to 1; a blank title becomes a placeholder.
func Sprint(p SprintParams) string {
	if p.Milestone <= 0 {
		p.Milestone = 1
	}
	if p.Sprint <= 0 {
		p.Sprint = 1
	}
	title := orDefault(p.Title, "Untitled Sprint")
	goal := orDefault(p.Goal, "_Goal to be defined._")

	return fmt.Sprintf(`# M%02d_S%02d: %s

**Date:** %s
**Status:** planned

## Goal

%s

## Scope

- [ ] _Add scope items._

## Deliverables

- _Add deliverables._

## Notes

_None yet._
`, p.Milestone, p.Sprint, title, renderDate(p.Date), goal)
}

// DocRefParams configures a documentation-reference record.
type DocRefParams struct {
	Target  string
	Source  string
	Summary string
	Date    time.Time
}

// DocRef renders a DOCREF record body.
func DocRef(p DocRefParams) string {
	target := orDefault(p.Target, "Untitled Reference")
	source := orDefault(p.Source, "_unknown_")
	summary := orDefault(p.Summary, "_No summary provided._")

	return fmt.Sprintf(`# Doc Reference: %s

**Recorded:** %s
**Source:** %s

## Summary

%s
`, target, renderDate(p.Date), source, summary)
}

// CodeRefParams configures a code-reference record.
type CodeRefParams struct {
	Target   string
	Location string
	Notes    string
	Date     time.Time
}

// CodeRef renders a CODEREF record body.
func CodeRef(p CodeRefParams) string {
	target := orDefault(p.Target, "Untitled Code Reference")
	location := orDefault(p.Location, "_unknown_")
	notes := orDefault(p.Notes, "_No notes provided._")

	return fmt.Sprintf(`# Code Reference: %s

**Recorded:** %s
**Location:** %s

## Notes

%s
`, target, renderDate(p.Date), location, notes)
}

// OpinionParams configures an opinion record.
type OpinionParams struct {
	Target    string
	Stance    string
	Rationale string
	Date      time.Time
}

// Opinion renders an OPINIONS record body.
func Opinion(p OpinionParams) string {
	target := orDefault(p.Target, "Untitled Opinion")
	stance := orDefault(p.Stance, "_undecided_")
	rationale := orDefault(p.Rationale, "_No rationale provided._")

	return fmt.Sprintf(`# Opinion: %s

**Recorded:** %s
**Stance:** %s

## Rationale

%s
`, target, renderDate(p.Date), stance, rationale)
}

// PlanRootParams configures the PLAN.md root document.
type PlanRootParams struct {
	Project     string
	Description string
	Date        time.Time
}

// PlanRoot renders the PLAN.md skeleton created by project initialization.
func PlanRoot(p PlanRootParams) string {
	project := orDefault(p.Project, "Untitled Project")
	description := orDefault(p.Description, "_Describe the project here._")

	return fmt.Sprintf(`# %s — Project Plan

**Created:** %s

## Overview

%s

## Milestones

| Milestone | Sprints | Status |
|---|---|---|
| M01 | S01 | planned |

## References

Doc references (DOCREF), code references (CODEREF), and opinions
(OPINIONS) recorded for this project live alongside this file.
`, project, renderDate(p.Date), description)
}

// StatusRootParams configures the CURRENT.md root document.
type StatusRootParams struct {
	Project string
	Focus   string
	Date    time.Time
}

// StatusRoot renders the CURRENT.md skeleton created by project
// initialization.
func StatusRoot(p StatusRootParams) string {
	project := orDefault(p.Project, "Untitled Project")
	focus := orDefault(p.Focus, "_Set the current focus._")

	return fmt.Sprintf(`# %s — Current Status

**Updated:** %s

## Active Sprint

M01_S01

## Focus

%s

## Blockers

_None._
`, project, renderDate(p.Date), focus)
}
