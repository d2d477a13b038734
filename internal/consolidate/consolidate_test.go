package consolidate

import (
	"errors"
	"testing"
)

const header = "ISIN,Date,Time,StartPrice,MaxPrice,MinPrice,EndPrice,TradedVolume\n"

func TestConsolidate_TableDriven(t *testing.T) {
	row1 := "DE0001,2022-01-03,09:00,100,101,99,100.5,500\n"
	row2 := "DE0001,2022-01-03,17:30,105,107,98,104,300\n"

	cases := []struct {
		name     string
		batches  [][]byte
		wantErr  error
		wantRows int
	}{
		{
			name:     "single valid batch",
			batches:  [][]byte{[]byte(header + row1)},
			wantRows: 1,
		},
		{
			name:     "header-only batch is skipped",
			batches:  [][]byte{[]byte(header), []byte(header + row1)},
			wantRows: 1,
		},
		{
			name:     "empty and whitespace batches are skipped",
			batches:  [][]byte{nil, []byte("  \n\n"), []byte(header + row1 + row2)},
			wantRows: 2,
		},
		{
			name:    "all batches empty",
			batches: [][]byte{[]byte(header), []byte("")},
			wantErr: ErrEmptyDataset,
		},
		{
			name:    "no batches at all",
			batches: nil,
			wantErr: ErrEmptyDataset,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Consolidate(tc.batches)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(got) != tc.wantRows {
				t.Fatalf("rows: want %d got %d", tc.wantRows, len(got))
			}
		})
	}
}

func TestConsolidate_MissingColumnIsSchemaError(t *testing.T) {
	// TradedVolume column absent but the batch has a data row.
	bad := "ISIN,Date,Time,StartPrice,MaxPrice,MinPrice,EndPrice\n" +
		"DE0001,2022-01-03,09:00,100,101,99,100.5\n"
	_, err := Consolidate([][]byte{[]byte(bad)})
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if se.Column != "TradedVolume" {
		t.Fatalf("wrong column reported: %q", se.Column)
	}
}

func TestConsolidate_HeaderOnlySkippedBeforeSchemaCheck(t *testing.T) {
	// A header-only batch missing columns must be skipped, not rejected.
	partial := "ISIN,Date\n"
	valid := header + "DE0001,2022-01-03,09:00,100,101,99,100.5,500\n"
	got, err := Consolidate([][]byte{[]byte(partial), []byte(valid)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows: want 1 got %d", len(got))
	}
}

func TestConsolidate_ProjectsExtraColumns(t *testing.T) {
	// Extra columns anywhere in the header are dropped; required columns may
	// appear in any order.
	batch := "Mnemonic,Date,ISIN,Time,StartPrice,MaxPrice,MinPrice,EndPrice,TradedVolume,NumberOfTrades\n" +
		"SAP,2022-01-03,DE0001,09:00,100,101,99,100.5,500,42\n"
	got, err := Consolidate([][]byte{[]byte(batch)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	r := got[0]
	if r.ISIN != "DE0001" || r.StartPrice != 100 || r.TradedVolume != 500 {
		t.Fatalf("bad projection: %+v", r)
	}
	if r.Date.Format("2006-01-02") != "2022-01-03" {
		t.Fatalf("bad date: %v", r.Date)
	}
	if r.Time.Hour() != 9 || r.Time.Minute() != 0 {
		t.Fatalf("bad time: %v", r.Time)
	}
}

func TestConsolidate_PreservesBatchAndRowOrder(t *testing.T) {
	b1 := header +
		"DE0001,2022-01-03,09:00,1,1,1,1,1\n" +
		"DE0001,2022-01-03,09:01,2,2,2,2,2\n"
	b2 := header +
		"DE0002,2022-01-03,09:00,3,3,3,3,3\n"
	got, err := Consolidate([][]byte{[]byte(b1), []byte(b2)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows: want 3 got %d", len(got))
	}
	if got[0].StartPrice != 1 || got[1].StartPrice != 2 || got[2].StartPrice != 3 {
		t.Fatalf("order not preserved: %+v", got)
	}
}

func TestConsolidate_DuplicatesAreKept(t *testing.T) {
	row := "DE0001,2022-01-03,09:00,100,101,99,100.5,500\n"
	got, err := Consolidate([][]byte{[]byte(header + row), []byte(header + row)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("duplicates must survive, got %d rows", len(got))
	}
}

func TestConsolidate_MalformedRowFailsRun(t *testing.T) {
	cases := []struct {
		name string
		row  string
	}{
		{name: "bad price", row: "DE0001,2022-01-03,09:00,abc,101,99,100.5,500\n"},
		{name: "bad date", row: "DE0001,03.01.2022,09:00,100,101,99,100.5,500\n"},
		{name: "bad time", row: "DE0001,2022-01-03,morning,100,101,99,100.5,500\n"},
		{name: "bad volume", row: "DE0001,2022-01-03,09:00,100,101,99,100.5,lots\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Consolidate([][]byte{[]byte(header + tc.row)}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseClock_SecondsAccepted(t *testing.T) {
	c, err := parseClock("17:30:15")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.Hour() != 17 || c.Minute() != 30 || c.Second() != 15 {
		t.Fatalf("bad clock: %v", c)
	}
}
