package imports

import (
	// Standard tools - always available
	_ "github.com/pdfkit-go/pdfkit/internal/tools/convert"
	_ "github.com/pdfkit-go/pdfkit/internal/tools/edit"
	_ "github.com/pdfkit-go/pdfkit/internal/tools/info"
	_ "github.com/pdfkit-go/pdfkit/internal/tools/pages"
	_ "github.com/pdfkit-go/pdfkit/internal/tools/security"

	// OCR tools register but stay disabled until enabled via ENABLE_ADDITIONAL_TOOLS
	_ "github.com/pdfkit-go/pdfkit/internal/tools/ocr"
)
