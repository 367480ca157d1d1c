package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"docketdesk/contexts/public-comment/export-service/domain/entities"
)

// TabularColumns is the fixed column order of tabular exports.
var TabularColumns = []string{
	"comment_id",
	"docket_id",
	"docket_title",
	"docket_reference",
	"commenter_name",
	"commenter_email",
	"commenter_organization",
	"comment_text",
	"status",
	"attachment_count",
	"attachment_names",
	"submitted_at",
	"updated_at",
}

const attachmentNameSeparator = "; "

// csv.Writer drops a lone CR and readers fold a quoted CRLF to LF, so text
// fields are written with LF line breaks only.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// WriteTabular writes a header and one row per comment. Fields holding the
// delimiter, a quote or a line break are quoted with inner quotes doubled.
func WriteTabular(w io.Writer, comments []entities.SourceComment) (int, error) {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	if err := writer.Write(TabularColumns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for i, comment := range comments {
		if err := writer.Write(TabularRow(comment)); err != nil {
			return i, fmt.Errorf("write row %s: %w", comment.CommentID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return len(comments), fmt.Errorf("flush table: %w", err)
	}
	return len(comments), nil
}

func TabularRow(comment entities.SourceComment) []string {
	names := make([]string, 0, len(comment.Attachments))
	for _, attachment := range comment.Attachments {
		names = append(names, attachment.FileName)
	}
	return []string{
		comment.CommentID,
		comment.DocketID,
		lineBreaks.Replace(comment.DocketTitle),
		comment.DocketReference,
		lineBreaks.Replace(comment.CommenterName),
		comment.CommenterEmail,
		lineBreaks.Replace(comment.CommenterOrganization),
		lineBreaks.Replace(comment.Content),
		comment.Status,
		strconv.Itoa(len(comment.Attachments)),
		strings.Join(names, attachmentNameSeparator),
		comment.SubmittedAt.UTC().Format(time.RFC3339),
		comment.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ParseTabular reads a table produced by WriteTabular and returns its data
// rows keyed by column name.
func ParseTabular(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(TabularColumns)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, column := range TabularColumns {
		if header[i] != column {
			return nil, fmt.Errorf("unexpected column %d: %q", i, header[i])
		}
	}
	rows := make([]map[string]string, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make(map[string]string, len(TabularColumns))
		for i, column := range TabularColumns {
			row[column] = record[i]
		}
		rows = append(rows, row)
	}
}
