package binance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NOTE ~> The klines endpoint returns each candle as a positional array:
//
//  [0]  1499040000000,      // Open time
//  [1]  "0.01634790",       // Open
//  [2]  "0.80000000",       // High
//  [3]  "0.01575800",       // Low
//  [4]  "0.01577100",       // Close
//  [5]  "148976.11427815",  // Volume
//  [6]  1499644799999,      // Close time
//  [7]  "2434.19055334",    // Quote asset volume
//  [8]  308,                // Number of trades
//  [9]  "1756.87402397",    // Taker buy base asset volume
//  [10] "28.46694368",      // Taker buy quote asset volume
//  [11] "17928899.62484339" // Ignore.

const (
	StartTimeIndex        = 0
	OpenIndex             = 1
	HighIndex             = 2
	LowIndex              = 3
	CloseIndex            = 4
	VolumeIndex           = 5
	EndTimeIndex          = 6
	QuoteAssetVolumeIndex = 7
	CountIndex            = 8

	minCandleFields = CountIndex + 1
)

//
// Candle implements the exchange.Candle interface for candlesticks (a.k.a. klines) returned by the
// klines method.
//
type Candle struct {
	start       time.Time
	end         time.Time
	open        decimal.Decimal
	high        decimal.Decimal
	low         decimal.Decimal
	close       decimal.Decimal
	volume      decimal.Decimal
	quoteVolume decimal.Decimal
	count       int
}

func (o *Candle) StartTime() time.Time { return o.start }
func (o *Candle) EndTime() time.Time { return o.end }
func (o *Candle) Open() decimal.Decimal { return o.open }
func (o *Candle) High() decimal.Decimal { return o.high }
func (o *Candle) Low() decimal.Decimal { return o.low }
func (o *Candle) Close() decimal.Decimal { return o.close }
func (o *Candle) Volume() decimal.Decimal { return o.volume }
func (o *Candle) QuoteVolume() decimal.Decimal { return o.quoteVolume }
func (o *Candle) Count() int { return o.count }

func (o *Candle) String() string {
	return fmt.Sprintf(
		"%s O:%s H:%s L:%s C:%s V:%s N:%d",
		o.start.UTC().Format(time.RFC3339), o.open, o.high, o.low, o.close, o.volume, o.count,
	)
}

//
// UnmarshalJSON implements the json.Unmarshaler interface for Candle structures so that the
// positional JSON arrays that represent them can be properly unmarshalled.
//
func (o *Candle) UnmarshalJSON(data []byte) error {
	//
	// Decode into a raw array, keeping numbers exact.
	//
	var raw []interface{}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(&raw); err != nil {
		return err
	}

	if len(raw) < minCandleFields {
		return fmt.Errorf("candle has %d fields, expected at least %d", len(raw), minCandleFields)
	}

	//
	// Parse the start and end times, which are unix milliseconds.
	//
	var err error

	if o.start, err = candleTime(raw, StartTimeIndex, "start (open) time"); err != nil {
		return err
	}

	if o.end, err = candleTime(raw, EndTimeIndex, "end (close) time"); err != nil {
		return err
	}

	//
	// Parse the prices and volumes, which are decimal strings.
	//
	fields := []struct {
		dst   *decimal.Decimal
		index int
		name  string
	}{
		{&o.open, OpenIndex, "open"},
		{&o.high, HighIndex, "high"},
		{&o.low, LowIndex, "low"},
		{&o.close, CloseIndex, "close"},
		{&o.volume, VolumeIndex, "volume"},
		{&o.quoteVolume, QuoteAssetVolumeIndex, "quote asset volume"},
	}

	for _, f := range fields {
		if *f.dst, err = candleDecimal(raw, f.index, f.name); err != nil {
			return err
		}
	}

	//
	// Parse the trade count.
	//
	countRaw, ok := raw[CountIndex].(json.Number)
	if !ok {
		return fmt.Errorf("failed to assert type of count (%+v)", raw[CountIndex])
	}

	count, err := countRaw.Int64()
	if err != nil {
		return fmt.Errorf("failed to parse count (%s): %s", countRaw, err)
	}

	o.count = int(count)

	return nil
}

func candleTime(raw []interface{}, index int, name string) (time.Time, error) {
	n, ok := raw[index].(json.Number)
	if !ok {
		return time.Time{}, fmt.Errorf("failed to assert type of %s (%+v)", name, raw[index])
	}

	ms, err := n.Int64()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s (%s): %s", name, n, err)
	}

	return time.Unix(0, ms*int64(time.Millisecond)), nil
}

func candleDecimal(raw []interface{}, index int, name string) (decimal.Decimal, error) {
	s, ok := raw[index].(string)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("failed to assert type of %s (%+v)", name, raw[index])
	}

	return decimal.NewFromString(s)
}
