package main

import "github.com/adanyl0v/todo-reminders/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadConfig()
	app.MustInitApplicationLogger()
	app.InitMetrics()

	app.MustOpenStorage()
	defer app.CloseStorage()

	app.MustStartMonitor()
	defer app.StopMonitor()

	app.MustListenAndServeHTTP()
}
