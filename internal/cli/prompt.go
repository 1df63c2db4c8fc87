package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/scheduler"
)

// ErrInputClosed is returned when input ends while a prompt is waiting.
var ErrInputClosed = errors.New("cli: input closed")

// Prompter reads answers line by line and re-asks until an answer is valid.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter returns a prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints prompt and returns the next input line without its terminator.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			fmt.Fprintln(p.out)
			return "", ErrInputClosed
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Int asks until the answer is an integer.
func (p *Prompter) Int(prompt string) (int, error) {
	for {
		line, err := p.Line(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil {
			return n, nil
		}
		p.println("Ange ett tal!")
	}
}

// Choice asks until the answer is between 1 and count.
func (p *Prompter) Choice(count int) (int, error) {
	for {
		n, err := p.Int("Ange ett heltal: ")
		if err != nil {
			return 0, err
		}
		if n >= 1 && n <= count {
			return n, nil
		}
		p.println(fmt.Sprintf("%d är inte ett valbart alternativ!", n))
	}
}

// YesNo asks until the answer is j or n.
func (p *Prompter) YesNo(prompt string) (bool, error) {
	for {
		line, err := p.Line(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "j":
			return true, nil
		case "n":
			return false, nil
		}
		p.println("Inte giltigt svar, ange j eller n!")
	}
}

// Date asks until the answer is an existing date written YYYYMMDD.
func (p *Prompter) Date() (calendar.Date, error) {
	for {
		line, err := p.Line("Ange datum (ÅÅÅÅMMDD): ")
		if err != nil {
			return calendar.Date{}, err
		}
		date, err := calendar.ParseDate(strings.TrimSpace(line))
		if err == nil {
			return date, nil
		}
		p.println("Ej ett giltigt datum!")
	}
}

// Clock asks until the answer is a valid time of day.
func (p *Prompter) Clock(prompt string) (scheduler.Clock, error) {
	for {
		line, err := p.Line(prompt)
		if err != nil {
			return 0, err
		}
		c, err := scheduler.ParseClock(line)
		if err == nil {
			return c, nil
		}
		p.println("Ej en giltig tid!")
	}
}

func (p *Prompter) println(s string) {
	fmt.Fprintln(p.out, s)
}
