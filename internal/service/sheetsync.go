package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"license-validation-service/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetSync mirrors license records into a Google Sheet so operators
// can eyeball the table without database access. It is optional; a nil
// *SheetSync is a no-op.
type SheetSync struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetSync authorizes against the Sheets API with a service
// account credential file. Returns nil when syncing is disabled.
func NewSheetSync(enabled bool, credentialPath, spreadsheetID, sheetName string) (*SheetSync, error) {
	if !enabled {
		return nil, nil
	}

	ctx := context.Background()

	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, fmt.Errorf("read sheet credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("load sheet credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &SheetSync{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// SyncLicense writes one record to the sheet, updating the row whose
// first column matches the key or appending a new one.
func (s *SheetSync) SyncLicense(rec *model.License) error {
	if s == nil {
		return nil
	}

	keyRange := fmt.Sprintf("%s!A2:A", s.sheetName)
	keyResp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, keyRange).Do()
	if err != nil {
		log.Printf("sheet sync: read keys: %v", err)
		return fmt.Errorf("read sheet keys: %w", err)
	}

	rowIndex := 0
	found := false
	for i, row := range keyResp.Values {
		if len(row) > 0 && row[0] == rec.Key {
			found = true
			rowIndex = i + 2 // data starts at A2
			break
		}
	}

	values := [][]interface{}{rowValues(rec)}

	if found {
		rowRange := fmt.Sprintf("%s!A%d:G%d", s.sheetName, rowIndex, rowIndex)
		_, err = s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			rowRange,
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	} else {
		_, err = s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			s.sheetName+"!A2:G",
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	}

	if err != nil {
		log.Printf("sheet sync: write license %s: %v", rec.Key, err)
		return fmt.Errorf("write sheet row: %w", err)
	}

	return nil
}

// SyncAll rewrites the data range from a full listing.
func (s *SheetSync) SyncAll(licenses []model.License) error {
	if s == nil {
		return nil
	}

	values := make([][]interface{}, 0, len(licenses))
	for i := range licenses {
		values = append(values, rowValues(&licenses[i]))
	}

	_, err := s.service.Spreadsheets.Values.Update(
		s.spreadsheetID,
		s.sheetName+"!A2:G",
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		log.Printf("sheet sync: rewrite table: %v", err)
		return fmt.Errorf("rewrite sheet table: %w", err)
	}

	return nil
}

func rowValues(rec *model.License) []interface{} {
	expiration := ""
	if rec.ExpirationDate != nil {
		expiration = *rec.ExpirationDate
	}
	return []interface{}{
		rec.Key,
		rec.Owner,
		rec.SubscriptionDate,
		expiration,
		rec.Active,
		rec.CreatedAt.Format(time.RFC3339),
		rec.UpdatedAt.Format(time.RFC3339),
	}
}
