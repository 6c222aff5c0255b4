package notify

import (
	"errors"
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier sends user-facing emails for marketplace events. Delivery is
// best effort: callers log failures and never fail the operation that
// triggered the notification.
type Notifier interface {
	NFTMinted(toEmail, nftName, tier string, priceSol float64) error
	NFTSold(toEmail, nftName string, priceSol float64) error
}

type emailNotifier struct {
	client      *sendgrid.Client
	senderEmail string
	senderName  string
}

func NewEmailNotifier() Notifier {
	return &emailNotifier{
		client:      sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY")),
		senderEmail: os.Getenv("SENDGRID_SENDER_EMAIL"),
		senderName:  os.Getenv("SENDGRID_SENDER_NAME"),
	}
}

func (n *emailNotifier) NFTMinted(toEmail, nftName, tier string, priceSol float64) error {
	subject := fmt.Sprintf("You minted %s!", nftName)
	plain := fmt.Sprintf("Your PixiNFT %s is minted. Rarity: %s. Mint price: %.2f SOL.", nftName, tier, priceSol)
	html := fmt.Sprintf("<p>Your PixiNFT <strong>%s</strong> is minted.</p><p>Rarity: %s<br>Mint price: %.2f SOL</p>", nftName, tier, priceSol)
	return n.send(subject, toEmail, plain, html)
}

func (n *emailNotifier) NFTSold(toEmail, nftName string, priceSol float64) error {
	subject := fmt.Sprintf("%s just sold!", nftName)
	plain := fmt.Sprintf("Your PixiNFT %s sold for %.2f SOL on the marketplace.", nftName, priceSol)
	html := fmt.Sprintf("<p>Your PixiNFT <strong>%s</strong> sold for %.2f SOL on the marketplace.</p>", nftName, priceSol)
	return n.send(subject, toEmail, plain, html)
}

func (n *emailNotifier) send(subject, toEmail, plain, html string) error {
	from := mail.NewEmail(n.senderName, n.senderEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)
	response, err := n.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return errors.New("failed to send email")
	}
	return nil
}
