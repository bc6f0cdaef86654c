package sheets

import (
	"context"

	gsheets "google.golang.org/api/sheets/v4"
)

// valuesAPI is the subset of the spreadsheet values service used by Storage.
type valuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
	Clear(ctx context.Context, spreadsheetID, rng string) error
}

const valueInputOption = "USER_ENTERED"

type serviceValues struct {
	svc *gsheets.Service
}

func (v serviceValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v serviceValues) Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (v serviceValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	return err
}

func (v serviceValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := v.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	return err
}
