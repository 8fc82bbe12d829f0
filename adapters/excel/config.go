package excel

// Column headers written by the acquisition software.
const (
	ColumnTime   = "Time (s)"
	ColumnAngle  = "Angle"
	ColumnAngleX = "Angle x"
	ColumnAngleY = "Angle y"
)

// ExcelConfig holds configuration for spreadsheet channel files
type ExcelConfig struct {
	Sheet        string `json:"sheet"` // worksheet read from .xlsx files
	TimeColumn   string `json:"time_column"`
	AngleColumn  string `json:"angle_column"`
	AngleXColumn string `json:"angle_x_column"`
	AngleYColumn string `json:"angle_y_column"`
}

// DefaultExcelConfig returns the layout produced by the acquisition software
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		Sheet:        "Sheet1",
		TimeColumn:   ColumnTime,
		AngleColumn:  ColumnAngle,
		AngleXColumn: ColumnAngleX,
		AngleYColumn: ColumnAngleY,
	}
}
