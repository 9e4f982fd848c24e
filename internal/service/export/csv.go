// Package export формирует CSV-выгрузку броней в формате, который ожидают
// существующие таблицы ресторана: поля без экранирования, сообщение в кавычках.
package export

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"feastiq/internal/model"
)

const Header = "Name,Phone,Email,Guests,Date,Time,Message,Created_At\n"

const createdAtLayout = "2006-01-02 15:04:05"

// WriteCSV пишет заголовок и по строке на бронь в переданном порядке.
func WriteCSV(w io.Writer, rs []model.Reservation) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header); err != nil {
		return err
	}
	for _, r := range rs {
		if _, err := bw.WriteString(Line(r)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func Line(r model.Reservation) string {
	return fmt.Sprintf("%s,%s,%s,%s,%s,%s,\"%s\",%s\n",
		r.Name, r.Phone, r.Email, r.Guests, r.Date, r.Time, r.Message, FormatCreatedAt(r.CreatedAt))
}

// FormatCreatedAt - "2006-01-02 15:04:05", микросекунды добавляются только если они не нулевые.
func FormatCreatedAt(t time.Time) string {
	t = t.UTC()
	s := t.Format(createdAtLayout)
	if us := t.Nanosecond() / int(time.Microsecond); us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}
