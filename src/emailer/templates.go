package emailer

// emailTemplate pairs the fixed message parts; the body substitutes the
// customer's given name for the ### token at send time.
type emailTemplate struct {
	Subject string
	Sender  string
	Body    string
}

var sensorError = emailTemplate{
	Subject: "A problem was detected with one of your sensors",
	Sender:  "Device Monitor <no-reply@devicemonitor.example.com>",
	Body: `<html>
<head></head>
<body>
  <p>Hi ###,</p>
  <p>We detected a problem with one of your sensors. Please check the device
  in your app for more detail.</p>
  <p>If the problem persists, contact support.</p>
</body>
</html>`,
}
