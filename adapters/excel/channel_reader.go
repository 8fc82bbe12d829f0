package excel

import (
	"context"
	"fmt"
	"strconv"

	"vectralab/domain/gnomon"
	"vectralab/internal"
	"vectralab/internal/errors"
	"vectralab/ports"
)

// ChannelReader implements ports.ChannelReader over CSV and XLSX files
type ChannelReader struct {
	config ExcelConfig
	logger *internal.Logger
}

var _ ports.ChannelReader = (*ChannelReader)(nil)

// NewChannelReader creates a reader for files laid out as described by config
func NewChannelReader(config ExcelConfig, logger *internal.Logger) *ChannelReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ChannelReader{config: config, logger: logger}
}

// ReadChannel loads path into a channel named name.
func (r *ChannelReader) ReadChannel(ctx context.Context, path, name string, kind gnomon.ChannelKind) (gnomon.Channel, error) {
	if err := ctx.Err(); err != nil {
		return gnomon.Channel{}, err
	}

	data, err := NewDataReaderWithSheet(path, r.config.Sheet, r.logger).ReadData()
	if err != nil {
		return gnomon.Channel{}, errors.Wrapf(err, "reading channel %s", name)
	}

	kind, err = r.resolveKind(data, kind)
	if err != nil {
		return gnomon.Channel{}, errors.Wrapf(err, "reading channel %s from %s", name, path)
	}

	ch := gnomon.Channel{Name: name, Kind: kind}
	if kind == gnomon.KindRadial {
		ch.RadialSamples, err = r.radialSamples(data)
	} else {
		ch.Samples, err = r.linearSamples(data)
	}
	if err != nil {
		return gnomon.Channel{}, errors.Wrapf(err, "reading channel %s from %s", name, path)
	}

	r.logger.Info("[ChannelReader] loaded %s channel %q: %d readings from %s", kind, name, ch.Len(), path)
	return ch, nil
}

// resolveKind checks an explicit kind against the headers, or infers one.
// Files carrying both an angle pair and a single angle are read as radial.
func (r *ChannelReader) resolveKind(data *ExcelData, kind gnomon.ChannelKind) (gnomon.ChannelKind, error) {
	if !data.HasColumn(r.config.TimeColumn) {
		return "", errors.InvalidInput(fmt.Sprintf("missing column %q", r.config.TimeColumn))
	}
	hasPair := data.HasColumn(r.config.AngleXColumn) && data.HasColumn(r.config.AngleYColumn)
	hasAngle := data.HasColumn(r.config.AngleColumn)

	switch kind {
	case "", ports.KindAuto:
		if hasPair {
			return gnomon.KindRadial, nil
		}
		if hasAngle {
			return gnomon.KindLinear, nil
		}
		return "", errors.InvalidInput("no angle columns found")
	case gnomon.KindRadial:
		if !hasPair {
			return "", errors.InvalidInput(fmt.Sprintf("radial channel needs columns %q and %q", r.config.AngleXColumn, r.config.AngleYColumn))
		}
		return kind, nil
	case gnomon.KindLinear:
		if !hasAngle {
			return "", errors.InvalidInput(fmt.Sprintf("linear channel needs column %q", r.config.AngleColumn))
		}
		return kind, nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unknown channel kind %q", kind))
	}
}

func (r *ChannelReader) linearSamples(data *ExcelData) ([]gnomon.Sample, error) {
	timeCol, _ := data.column(r.config.TimeColumn)
	angleCol, _ := data.column(r.config.AngleColumn)

	samples := make([]gnomon.Sample, 0, len(data.Rows))
	for i, row := range data.Rows {
		t, err := parseCell(row, timeCol, i)
		if err != nil {
			return nil, err
		}
		a, err := parseCell(row, angleCol, i)
		if err != nil {
			return nil, err
		}
		samples = append(samples, gnomon.Sample{Time: t, Angle: a})
	}
	return samples, nil
}

func (r *ChannelReader) radialSamples(data *ExcelData) ([]gnomon.RadialSample, error) {
	timeCol, _ := data.column(r.config.TimeColumn)
	xCol, _ := data.column(r.config.AngleXColumn)
	yCol, _ := data.column(r.config.AngleYColumn)

	samples := make([]gnomon.RadialSample, 0, len(data.Rows))
	for i, row := range data.Rows {
		t, err := parseCell(row, timeCol, i)
		if err != nil {
			return nil, err
		}
		x, err := parseCell(row, xCol, i)
		if err != nil {
			return nil, err
		}
		y, err := parseCell(row, yCol, i)
		if err != nil {
			return nil, err
		}
		samples = append(samples, gnomon.RadialSample{Time: t, AngleX: x, AngleY: y})
	}
	return samples, nil
}

// parseCell reports rows 1-based after the header, as a spreadsheet user counts them.
func parseCell(row RawRowData, column string, index int) (float64, error) {
	raw, ok := row[column]
	if !ok || raw == "" {
		return 0, errors.InvalidInput(fmt.Sprintf("row %d: column %q is empty", index+2, column))
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("row %d: column %q value %q is not a number", index+2, column, raw))
	}
	return v, nil
}
