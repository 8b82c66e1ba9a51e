// Package iocli изолирует консольный ввод/вывод клиента, чтобы команды можно было тестировать
package iocli

//go:generate moq -out io_mock.go . IO

// IO is the console of the journal client: command output, prompts and
// confirmations. Write lets a command stream a table through io.Writer helpers.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	Write(p []byte) (n int, err error)
	// ReadInput returns one trimmed line
	ReadInput(prompt string) (string, error)
	// ReadPassword reads without echo when attached to a terminal
	ReadPassword(prompt string) (string, error)
	// Confirm asks a yes/no question; only "y" and "yes" count as consent
	Confirm(prompt string) (bool, error)
}
