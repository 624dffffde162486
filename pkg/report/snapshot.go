package report

import (
	"io"
	"time"

	"github.com/frezendesp/GroupManagement/pkg/groups"
)

// Snapshot is the data a report is rendered from
type Snapshot struct {
	Group       *groups.Group
	Members     []groups.Member
	GeneratedAt time.Time
	GeneratedBy string
}

// Title returns the report title; the group is named in the details block
func (s *Snapshot) Title() string {
	return "Group Membership Report"
}

// Description returns the group description or a placeholder
func (s *Snapshot) Description() string {
	if s.Group.Description == "" {
		return "No description"
	}
	return s.Group.Description
}

// Rows returns the member table cells with empty values replaced
func (s *Snapshot) Rows() [][]string {
	rows := make([][]string, 0, len(s.Members))
	for _, m := range s.Members {
		rows = append(rows, []string{
			orNA(m.DisplayName),
			orNA(m.Email),
			orNA(m.Department),
			orNA(m.Location),
			orNA(m.Phone),
		})
	}
	return rows
}

// Columns are the member table headings
var Columns = []string{"Name", "Email", "Department", "Location", "Phone"}

// EmptyMessage is shown in place of the member table for empty groups
const EmptyMessage = "No members found in this group."

// Renderer writes a snapshot in one output format
type Renderer interface {
	ContentType() string
	Extension() string
	Render(w io.Writer, snap *Snapshot) error
}
