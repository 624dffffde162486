package report

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/groups"
	"github.com/frezendesp/GroupManagement/pkg/observability"
)

// Report formats
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
)

// DefaultFormat is used when no format is requested
const DefaultFormat = FormatHTML

// GroupSource loads a group and its ordered members
type GroupSource interface {
	GetByID(ctx context.Context, id int64) (*groups.Group, error)
	Members(ctx context.Context, groupID int64) ([]groups.Member, error)
}

// Rendered is a finished report
type Rendered struct {
	Body        []byte
	ContentType string
	Filename    string
	Format      string
}

// Generator builds, renders and audits membership reports
type Generator struct {
	source    GroupSource
	renderers map[string]Renderer
	audit     audit.Recorder
	metrics   *observability.Metrics
	logger    *observability.Logger
	now       func() time.Time
}

// NewGenerator creates a report generator with the HTML and PDF renderers
func NewGenerator(source GroupSource, recorder audit.Recorder, metrics *observability.Metrics, logger *observability.Logger) *Generator {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Generator{
		source: source,
		renderers: map[string]Renderer{
			FormatPDF:  PDFRenderer{},
			FormatHTML: HTMLRenderer{},
		},
		audit:   recorder,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Snapshot loads the current state of a group
func (g *Generator) Snapshot(ctx context.Context, actor *auth.User, groupID int64) (*Snapshot, error) {
	group, err := g.source.GetByID(ctx, groupID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, err
		}
		return nil, errs.Failed("load group", err)
	}
	members, err := g.source.Members(ctx, groupID)
	if err != nil {
		return nil, errs.Failed("list group members", err)
	}

	snap := &Snapshot{
		Group:       group,
		Members:     members,
		GeneratedAt: g.now(),
	}
	if actor != nil {
		snap.GeneratedBy = actor.DisplayName
	}
	return snap, nil
}

// Generate renders the membership report of a group in format
func (g *Generator) Generate(ctx context.Context, actor *auth.User, groupID int64, format, ip string) (*Rendered, error) {
	if !actor.IsAuthenticated() {
		return nil, errs.ErrUnauthenticated
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = DefaultFormat
	}
	renderer, ok := g.renderers[format]
	if !ok {
		return nil, errs.NewValidationError("format", fmt.Sprintf("unsupported report format %q", format))
	}

	snap, err := g.Snapshot(ctx, actor, groupID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, snap); err != nil {
		return nil, errs.Failed("render report", err)
	}

	g.audit.Record(ctx, audit.Record{
		ActorID:    audit.Int64Ptr(actor.ID),
		Action:     audit.ActionGenerateReport,
		TargetType: audit.TargetGroup,
		TargetID:   audit.Int64Ptr(groupID),
		Details:    fmt.Sprintf("Generated %s report for group %s", strings.ToUpper(format), snap.Group.Name),
		IPAddress:  ip,
	})
	g.metrics.ObserveReport(format)

	g.logger.WithFields(map[string]interface{}{
		"actor_id": actor.ID,
		"group_id": groupID,
		"format":   format,
		"members":  len(snap.Members),
	}).Info("Report generated")

	return &Rendered{
		Body:        buf.Bytes(),
		ContentType: renderer.ContentType(),
		Filename:    Filename(snap.Group.Name, renderer.Extension()),
		Format:      format,
	}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename returns the download name of a group report
func Filename(groupName, ext string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(groupName, "_"), "_")
	if name == "" {
		name = "group"
	}
	return "group_report_" + name + "." + ext
}
