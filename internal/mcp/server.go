package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/easyfill/easyfill/internal/config"
	"github.com/easyfill/easyfill/internal/extract"
	"github.com/easyfill/easyfill/internal/fields"
	"github.com/easyfill/easyfill/internal/pipeline"
	"github.com/easyfill/easyfill/internal/store"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	pipeline  *pipeline.Pipeline
	archive   *store.Store
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance. archive may be nil when
// archiving is disabled; extraction_history then reports accordingly.
func NewServer(cfg *config.Config, p *pipeline.Pipeline, archive *store.Store) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		pipeline:  p,
		archive:   archive,
		mcpServer: mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register document extraction tool
	extractDocumentTool := mcp.NewTool(
		"extract_document",
		mcp.WithDescription("Extract text from a document (image, PDF, or Word) and infer editable form fields"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document file"),
		),
		mcp.WithString("media_type",
			mcp.Description("Declared media type of the document (derived from the file extension if empty)"),
		),
		mcp.WithString("principal",
			mcp.Description("Identifier recorded alongside the archived extraction"),
		),
	)
	s.mcpServer.AddTool(extractDocumentTool, s.handleExtractDocument)

	// Register field inference tool
	inferFieldsTool := mcp.NewTool(
		"infer_fields",
		mcp.WithDescription("Infer editable form fields from already-extracted text"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Extracted document text to analyze"),
		),
	)
	s.mcpServer.AddTool(inferFieldsTool, s.handleInferFields)

	// Register extraction history tool
	extractionHistoryTool := mcp.NewTool(
		"extraction_history",
		mcp.WithDescription("List recently archived extractions, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of records to return (default 10)"),
		),
	)
	s.mcpServer.AddTool(extractionHistoryTool, s.handleExtractionHistory)

	// Register server info tool
	serverInfoTool := mcp.NewTool(
		"server_info",
		mcp.WithDescription("Get server information, supported document formats, and usage guidance"),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleExtractDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	mediaType := ""
	if mt, ok := args["media_type"].(string); ok {
		mediaType = mt
	}
	principal := ""
	if p, ok := args["principal"].(string); ok {
		principal = p
	}

	doc, err := s.loadDocument(path, mediaType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pipeline.Request{
		Document:  doc,
		Principal: principal,
	}
	if s.config.IsDebug() {
		req.OnProgress = func(ev extract.ProgressEvent) {
			log.Printf("extract %s: %d%% %s", doc.Filename, ev.Percent, ev.Phase)
		}
	}

	result, err := s.pipeline.Process(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatExtractionResult(result)), nil
}

func (s *Server) handleInferFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inferred := fields.Infer(text)

	responseText := fmt.Sprintf("Inferred %d field(s)\n", len(inferred))
	responseText += formatFields(inferred)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleExtractionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.archive == nil {
		return mcp.NewToolResultError("extraction archive is disabled; start the server with --datadir to enable it"), nil
	}

	limit := 10
	args := request.GetArguments()
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	recs, err := s.archive.Recent(limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatHistoryResult(recs)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// loadDocument reads the file at path into a Document, deriving the media
// type from the extension when the caller did not declare one.
func (s *Server) loadDocument(path, mediaType string) (extract.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return extract.Document{}, fmt.Errorf("cannot access document %s: %w", path, err)
	}
	if info.Size() > s.config.MaxFileSize {
		return extract.Document{}, fmt.Errorf("document %s exceeds maximum size of %d bytes", path, s.config.MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Document{}, fmt.Errorf("cannot read document %s: %w", path, err)
	}

	filename := filepath.Base(path)
	if mediaType == "" {
		mediaType = mediaTypeForFile(filename)
	}

	return extract.Document{
		Data:      data,
		MediaType: mediaType,
		Filename:  filename,
	}, nil
}

// mediaTypeForFile maps well-known document extensions to the media type a
// browser upload would declare for them. Unknown extensions map to a generic
// type so classification rejects them with a useful message.
func mediaTypeForFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// Formatting methods
func (s *Server) formatExtractionResult(result *pipeline.Result) string {
	text := fmt.Sprintf("Successfully extracted: %s\n", result.Filename)
	text += fmt.Sprintf("Characters: %d\n", len(result.Text))
	text += fmt.Sprintf("Fields: %d\n", len(result.Fields))

	text += "\nInferred fields:\n"
	text += formatFields(result.Fields)

	text += "\nExtracted text:\n"
	text += result.Text

	return text
}

func formatFields(list []fields.Field) string {
	if len(list) == 0 {
		return "  (none)\n"
	}

	var b strings.Builder
	for i, f := range list {
		fmt.Fprintf(&b, "%d. %s [%s]\n", i+1, f.Label, f.Kind)
		fmt.Fprintf(&b, "   ID: %s\n", f.ID)
		fmt.Fprintf(&b, "   Value: %s\n", f.Value)
	}
	return b.String()
}

func (s *Server) formatHistoryResult(recs []store.ExtractionRecord) string {
	if len(recs) == 0 {
		return "No archived extractions yet"
	}

	text := fmt.Sprintf("Found %d archived extraction(s), newest first:\n", len(recs))
	for i, rec := range recs {
		text += fmt.Sprintf("\n%d. %s\n", i+1, rec.Filename)
		text += fmt.Sprintf("   ID: %s\n", rec.ID)
		text += fmt.Sprintf("   Extracted: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
		text += fmt.Sprintf("   Fields: %d\n", rec.FieldCount)
		if rec.Principal != "" {
			text += fmt.Sprintf("   Principal: %s\n", rec.Principal)
		}
	}

	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Max Document Size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("OCR Language: %s\n", s.config.OCRLanguage)

	if s.config.ArchiveEnabled() {
		text += fmt.Sprintf("Archive: enabled (%s)\n", s.config.DataDirectory)
	} else {
		text += "Archive: disabled\n"
	}

	text += "\nSupported document formats:\n"
	for _, f := range s.pipeline.Formats() {
		switch f {
		case extract.FormatImage:
			text += "  • image (any image/* media type, recognized via OCR)\n"
		case extract.FormatPDF:
			text += "  • pdf (application/pdf with embedded text)\n"
		case extract.FormatWord:
			text += "  • word (.docx documents)\n"
		}
	}

	text += "\nAvailable tools:\n"
	text += "  • extract_document - extract text from a document and infer form fields\n"
	text += "  • infer_fields     - infer form fields from already-extracted text\n"
	text += "  • extraction_history - list recently archived extractions\n"
	text += "  • server_info      - this information\n"

	text += "\nScanned PDFs without embedded text cannot be read directly; "
	text += "re-submit each page as an image so OCR can recognize it."

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting EasyFill MCP server in stdio mode")
		log.Printf("Configuration: %s", s.config)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// For now, we'll just use stdio mode since the mark3labs library
	// handles the transport differently
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
