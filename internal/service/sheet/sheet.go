package sheet

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"feastiq/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const createdAtLayout = "02.01.2006 15:04"

// SheetService дублирует брони в Google таблицу, чтобы зал видел их без админки.
type SheetService struct {
	SpreadsheetID string
	TabID         string
	SheetName     string
	PauseMs       int // пауза между запросами в миллисекундах
	srv           *sheets.Service
	limiterMu     sync.Mutex
	lastCall      time.Time
	colMap        ColumnMap
}

type ColumnMap map[string]int // например: "N": 0, "Name": 1, ...

// Порядок колонок по умолчанию
func NewDefaultColumnMap() ColumnMap {
	return ColumnMap{
		"N":         0,
		"Name":      1,
		"Phone":     2,
		"Email":     3,
		"Guests":    4,
		"Date":      5,
		"Time":      6,
		"Message":   7,
		"CreatedAt": 8,
	}
}

// Создает ColumnMap из строки порядка (например: "N,Name,Phone,Date,Time")
func CreateColumnMapFromOrder(order string) ColumnMap {
	if strings.TrimSpace(order) == "" {
		return NewDefaultColumnMap()
	}
	fields := strings.Split(order, ",")
	m := make(ColumnMap)
	for idx, field := range fields {
		m[strings.TrimSpace(field)] = idx
	}
	return m
}

func NewSheetService(ctx context.Context, base64Creds, spreadsheetID, tabID string, pauseMs int, colMap ColumnMap) (*SheetService, error) {
	credBytes, err := base64.StdEncoding.DecodeString(base64Creds)
	if err != nil {
		return nil, fmt.Errorf("decode sheet credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, credBytes, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheet credentials: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}

	s := &SheetService{
		SpreadsheetID: spreadsheetID,
		TabID:         tabID,
		PauseMs:       pauseMs,
		srv:           srv,
		lastCall:      time.Now(),
		colMap:        colMap,
	}

	if err := s.fetchSheetName(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Имя листа по его ID; пустой TabID - первый лист таблицы
func (s *SheetService) fetchSheetName(ctx context.Context) error {
	s.Wait()

	resp, err := s.srv.Spreadsheets.Get(s.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}

	for _, sh := range resp.Sheets {
		if s.TabID == "" || fmt.Sprint(sh.Properties.SheetId) == s.TabID {
			s.SheetName = sh.Properties.Title
			return nil
		}
	}
	return fmt.Errorf("sheet tab %s not found", s.TabID)
}

// Лимитер: выдерживает паузу между запросами к API
func (s *SheetService) Wait() {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	elapsed := time.Since(s.lastCall)
	pause := time.Duration(s.PauseMs) * time.Millisecond
	if elapsed < pause {
		time.Sleep(pause - elapsed)
	}
	s.lastCall = time.Now()
}

func (s *SheetService) Channel() string {
	return model.ChannelSheet
}

// Notify дописывает бронь строкой в конец листа.
func (s *SheetService) Notify(ctx context.Context, r model.Reservation) error {
	s.Wait()

	vr := &sheets.ValueRange{
		Values: [][]interface{}{s.rowValues(r)},
	}
	_, err := s.srv.Spreadsheets.Values.
		Append(s.SpreadsheetID, fmt.Sprintf("%s!A1", s.SheetName), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append reservation %d to sheet: %w", r.ID, err)
	}
	return nil
}

func (s *SheetService) rowValues(r model.Reservation) []interface{} {
	width := 0
	for _, idx := range s.colMap {
		if idx+1 > width {
			width = idx + 1
		}
	}

	values := make([]interface{}, width)
	for i := range values {
		values[i] = ""
	}
	for field, idx := range s.colMap {
		switch field {
		case "N":
			values[idx] = r.ID
		case "Name":
			values[idx] = r.Name
		case "Phone":
			values[idx] = r.Phone
		case "Email":
			values[idx] = r.Email
		case "Guests":
			values[idx] = r.Guests
		case "Date":
			values[idx] = r.Date
		case "Time":
			values[idx] = r.Time
		case "Message":
			values[idx] = r.Message
		case "CreatedAt":
			values[idx] = r.CreatedAt.Format(createdAtLayout)
		}
	}
	return values
}
