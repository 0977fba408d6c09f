package board

import (
	"fmt"
	"math/rand"

	errs "naval_exe/internal/errors"
)

// Config описывает размер поля. Буквы идут с 'A', числа с 1.
type Config struct {
	Letters   int
	Numbers   int
	FleetSize int
}

func DefaultConfig() Config {
	return Config{Letters: 8, Numbers: 8, FleetSize: 15}
}

// Coordinate — значение-клетка, сравнивается по значению.
type Coordinate struct {
	Letter rune
	Number int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%c%d", c.Letter, c.Number)
}

func (cfg Config) Contains(c Coordinate) bool {
	return c.Letter >= 'A' && c.Letter < rune('A'+cfg.Letters) &&
		c.Number >= 1 && c.Number <= cfg.Numbers
}

// Parse разбирает текст вида "B4": одна буква и одна-две цифры.
// Координата вне поля — это ошибка валидации, а не молчаливое усечение.
func (cfg Config) Parse(s string) (Coordinate, error) {
	if len(s) < 2 || len(s) > 3 {
		return Coordinate{}, fmt.Errorf("%w: %q", errs.ErrBadCoordinate, s)
	}

	letter := rune(s[0])
	number := 0
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return Coordinate{}, fmt.Errorf("%w: %q", errs.ErrBadCoordinate, s)
		}
		number = number*10 + int(r-'0')
	}

	c := Coordinate{Letter: letter, Number: number}
	if !cfg.Contains(c) {
		return Coordinate{}, fmt.Errorf("%w: %q вне поля %dx%d", errs.ErrBadCoordinate, s, cfg.Letters, cfg.Numbers)
	}
	return c, nil
}

// AllCoordinates возвращает все клетки поля в фиксированном порядке.
func (cfg Config) AllCoordinates() []Coordinate {
	coords := make([]Coordinate, 0, cfg.Letters*cfg.Numbers)
	for l := 0; l < cfg.Letters; l++ {
		for n := 1; n <= cfg.Numbers; n++ {
			coords = append(coords, Coordinate{Letter: rune('A' + l), Number: n})
		}
	}
	return coords
}

// RandomFleet размещает флот: тасование Фишера-Йетса по всем клеткам,
// первые FleetSize штук — корабли. Выборка без возвращения, поэтому
// две палубы никогда не совпадают.
func (cfg Config) RandomFleet() []Coordinate {
	coords := cfg.AllCoordinates()
	for i := len(coords) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		coords[i], coords[j] = coords[j], coords[i]
	}
	return coords[:cfg.FleetSize]
}
