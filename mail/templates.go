package mail

import "html/template"

var verificationTmpl = template.Must(template.New("verification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Welcome{{if .FirstName}}, {{.FirstName}}{{end}}!</h2>
  <p>Thank you for registering with {{.AppName}}. To complete your registration, enter the verification code below:</p>
  <div style="margin: 30px 0; padding: 20px; background-color: #f5f5f5; border-radius: 8px; text-align: center;">
    <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">{{.Code}}</span>
  </div>
  <p>This code expires in <strong>10 minutes</strong>.</p>
  <p style="color: #999; font-size: 12px;">If you didn't create an account, please ignore this email. Never share this code with anyone.</p>
</div>`))

var requestSentTmpl = template.Must(template.New("requestSent").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Request Sent</h2>
  <p>Hi {{.SenderName}},</p>
  <p>Your connection request to <strong>{{.ReceiverName}}</strong> has been sent. We'll let you know as soon as they respond.</p>
</div>`))

var requestReceivedTmpl = template.Must(template.New("requestReceived").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>New Connection Request</h2>
  <p>Hi {{.ReceiverName}},</p>
  <p><strong>{{.SenderName}}</strong> would like to connect with you. Log in to view their profile and respond.</p>
</div>`))

var requestAcceptedTmpl = template.Must(template.New("requestAccepted").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>It's a Match!</h2>
  <p>Hi {{.SenderName}},</p>
  <p><strong>{{.ReceiverName}}</strong> has accepted your connection request.</p>
  {{if .PhoneNumber}}<p>You can reach them at <strong>{{.PhoneNumber}}</strong>.</p>{{end}}
  <p>Log in to view their full profile.</p>
</div>`))

var requestDeclinedTmpl = template.Must(template.New("requestDeclined").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Request Update</h2>
  <p>Hi {{.SenderName}},</p>
  <p>Unfortunately, <strong>{{.ReceiverName}}</strong> has declined your connection request. Keep browsing — your match is out there.</p>
</div>`))
