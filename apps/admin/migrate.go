package main

// migrate runs a goose command against the embedded migrations, eg. "up", "down-to 3", "status".
func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(cli.db.DB, cli.dialect, args[0], args[1:]...)
}
