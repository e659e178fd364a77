package logfile

import (
	"fmt"
	"io"
	"os"
)

// Appender agrega líneas de texto a un archivo. Cada llamada abre y cierra
// el archivo; no mantiene estado entre invocaciones de un job.
type Appender struct {
	path string
}

func NewAppender(path string) *Appender {
	return &Appender{path: path}
}

func (a *Appender) Path() string {
	return a.path
}

// Append escribe cada línea con un único Write para que dos jobs
// concurrentes solo puedan intercalar líneas completas.
func (a *Appender) Append(lines ...string) (err error) {
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("logfile: open %s: %w", a.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("logfile: close %s: %w", a.path, cerr)
		}
	}()

	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("logfile: write %s: %w", a.path, err)
		}
	}
	return nil
}

// WriteOrPrint intenta Append y, si falla, imprime en out el error
// ("<failPrefix>: <err>") seguido de las líneas.
func WriteOrPrint(a *Appender, out io.Writer, failPrefix string, lines ...string) error {
	err := a.Append(lines...)
	if err == nil {
		return nil
	}
	fmt.Fprintf(out, "%s: %v\n", failPrefix, err)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return err
}
