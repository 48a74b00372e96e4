package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
)

func printJSON(v any) error {
	b, err := jsonMarshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatMaybeID(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

func formatDisplay(display string) string {
	if display == "" {
		return "-"
	}
	return display
}

func printWeaves(items []domain.Weave) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID.String(),
			item.Slug,
			item.Name,
			formatTime(item.CreatedAt),
		})
	}
	printTable([]string{"ID", "SLUG", "NAME", "CREATED_AT"}, rows)
}

func printWorlds(items []domain.World) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID.String(),
			item.Slug,
			item.Name,
			strconv.FormatBool(item.IsPublic),
			formatTime(item.UpdatedAt),
		})
	}
	printTable([]string{"ID", "SLUG", "NAME", "PUBLIC", "UPDATED_AT"}, rows)
}

func printWorldMembers(items []domain.WorldUser) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.UserID.String(),
			item.Role,
			formatTime(item.AddedAt),
		})
	}
	printTable([]string{"USER_ID", "ROLE", "ADDED_AT"}, rows)
}

func printEntryTypes(items []domain.EntryType) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID.String(),
			item.Slug,
			item.Name,
			formatMaybeID(item.ParentID),
			strconv.FormatBool(item.IsSystem),
		})
	}
	printTable([]string{"ID", "SLUG", "NAME", "PARENT_ID", "SYSTEM"}, rows)
}

func printFieldDefinitions(items []domain.FieldDefinition) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID.String(),
			item.Slug,
			item.Name,
			string(item.FieldType),
			strconv.FormatBool(item.IsTemporal),
			strconv.Itoa(item.Position),
		})
	}
	printTable([]string{"ID", "SLUG", "NAME", "TYPE", "TEMPORAL", "POS"}, rows)
}

func printEntries(items []domain.Entry) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID.String(),
			item.Slug,
			item.Title,
			formatDisplay(item.TimelineDisplay),
			strconv.Itoa(strings.Count(item.Path, ".")),
			formatTime(item.UpdatedAt),
		})
	}
	printTable([]string{"ID", "SLUG", "TITLE", "TIMELINE", "DEPTH", "UPDATED_AT"}, rows)
}

func printFieldValues(items []domain.FieldValue) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID.String(),
			item.FieldDefinitionID.String(),
			formatDisplay(item.Timeline.Display("")),
			formatTime(item.UpdatedAt),
		})
	}
	printTable([]string{"ID", "FIELD_ID", "TIMELINE", "UPDATED_AT"}, rows)
}

func printBlocks(items []domain.Block) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID.String(),
			string(item.BlockType),
			formatDisplay(item.TimelineDisplay),
			strconv.Itoa(item.Version),
			formatTime(item.UpdatedAt),
		})
	}
	printTable([]string{"ID", "TYPE", "TIMELINE", "VERSION", "UPDATED_AT"}, rows)
}

func printReferenceTypes(items []domain.ReferenceType) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID.String(),
			item.Slug,
			item.Name,
			item.InverseName,
		})
	}
	printTable([]string{"ID", "SLUG", "NAME", "INVERSE"}, rows)
}

func printReferences(items []domain.Reference) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID.String(),
			item.SourceEntryID.String(),
			item.TargetEntryID.String(),
			formatDisplay(item.TimelineDisplay),
		})
	}
	printTable([]string{"ID", "SOURCE", "TARGET", "TIMELINE"}, rows)
}

func printActivityLogs(items []domain.ActivityLog) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		actor := "-"
		if item.ActorUserID != nil {
			actor = item.ActorUserID.String()
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(item.ID), 10),
			item.Action,
			item.TargetType,
			formatMaybeID(item.TargetID),
			actor,
			formatTime(item.CreatedAt),
		})
	}
	printTable([]string{"ID", "ACTION", "TARGET_TYPE", "TARGET_ID", "ACTOR", "AT"}, rows)
}

func printCharacterCounts(counts map[uuid.UUID]int) {
	rows := make([][]string, 0, len(counts))
	for id, n := range counts {
		rows = append(rows, []string{id.String(), strconv.Itoa(n)})
	}
	printTable([]string{"ENTRY_ID", "CHARACTERS"}, rows)
}
