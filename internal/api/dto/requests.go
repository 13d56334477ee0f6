package dto

// Multipart form fields accepted by the upload endpoints.
const (
	FieldLeads = "leads"
	FieldSales = "sales"
	FieldFile  = "file"
)

// Query parameters.
const (
	// ParamFormat selects the response format of POST /api/reconcile;
	// "xlsx" returns the workbook instead of JSON.
	ParamFormat = "format"
	// ParamName labels a pasted dataset.
	ParamName = "name"
)

// FormatXLSX is the ParamFormat value for workbook downloads.
const FormatXLSX = "xlsx"
