package freedvtnc

// Response is the single reply line for one command.
type Response struct {
	OK      bool
	Command string
	Data    string
	Message string
}

func okResponse(command string, data string) Response {
	return Response{OK: true, Command: command, Data: data} //nolint:exhaustruct
}

func errorResponse(message string) Response {
	return Response{OK: false, Message: message} //nolint:exhaustruct
}

// String renders the response without the line terminator.
func (r Response) String() string {
	if !r.OK {
		return "ERROR " + r.Message
	}

	if r.Data == "" {
		return "OK " + r.Command
	}

	return "OK " + r.Command + " " + r.Data
}
