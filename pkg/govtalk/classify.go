package govtalk

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"
)

// responseMessage mirrors the inbound GovTalk envelope. Namespaces are not
// pinned in the field tags: the gateway emits the envelope namespace as the
// default and the success-response body in its own namespace, and matching
// on local names keeps the decoder tolerant of both.
type responseMessage struct {
	XMLName xml.Name `xml:"GovTalkMessage"`
	Header  struct {
		MessageDetails struct {
			Class            string `xml:"Class"`
			Qualifier        string `xml:"Qualifier"`
			Function         string `xml:"Function"`
			TransactionID    string `xml:"TransactionID"`
			CorrelationID    string `xml:"CorrelationID"`
			ResponseEndPoint struct {
				PollInterval string `xml:"PollInterval,attr"`
				URL          string `xml:",chardata"`
			} `xml:"ResponseEndPoint"`
		} `xml:"MessageDetails"`
	} `xml:"Header"`
	Details struct {
		Errors struct {
			Error []struct {
				RaisedBy string   `xml:"RaisedBy"`
				Number   string   `xml:"Number"`
				Type     string   `xml:"Type"`
				Text     []string `xml:"Text"`
			} `xml:"Error"`
		} `xml:"GovTalkErrors"`
	} `xml:"GovTalkDetails"`
	Body struct {
		SuccessResponse *successResponse `xml:"SuccessResponse"`
	} `xml:"Body"`
}

type successResponse struct {
	Messages []struct {
		Code string `xml:"code,attr"`
		Text string `xml:",chardata"`
	} `xml:"Message"`
}

// Parse decodes raw gateway response bytes into a classified Response.
//
// Classification rules are applied in order: unparseable content is
// ErrMalformedResponse; any error block means Rejected with the gateway's
// texts verbatim; an acknowledgement bearing a correlation ID is Pending; a
// submit response bearing a correlation ID is Accepted; a delete response is
// Deleted. A response matching none of these is ErrMalformedResponse;
// no outcome is ever inferred from absence.
func Parse(raw []byte) (*Response, error) {
	var msg responseMessage
	if err := xml.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	md := msg.Header.MessageDetails
	resp := &Response{
		CorrelationID:    md.CorrelationID,
		ResponseEndpoint: md.ResponseEndPoint.URL,
		Raw:              raw,
	}
	if md.ResponseEndPoint.PollInterval != "" {
		if secs, err := strconv.ParseFloat(md.ResponseEndPoint.PollInterval, 64); err == nil {
			resp.PollInterval = time.Duration(secs * float64(time.Second))
		}
	}

	// Rule: any error block is an authoritative rejection, whatever the
	// qualifier says.
	if len(msg.Details.Errors.Error) > 0 || md.Qualifier == string(QualifierError) {
		if len(msg.Details.Errors.Error) == 0 {
			return nil, fmt.Errorf("%w: error qualifier with no error detail", ErrMalformedResponse)
		}
		resp.Outcome = Rejected
		for _, e := range msg.Details.Errors.Error {
			if len(e.Text) == 0 {
				resp.Messages = append(resp.Messages, fmt.Sprintf("error %s (%s)", e.Number, e.Type))
				continue
			}
			resp.Messages = append(resp.Messages, e.Text...)
		}
		return resp, nil
	}

	switch {
	case md.Qualifier == string(QualifierAcknowledgement) && md.CorrelationID != "":
		resp.Outcome = Pending
		return resp, nil

	case md.Qualifier == string(QualifierResponse) && md.Function == string(FunctionSubmit) && md.CorrelationID != "":
		resp.Outcome = Accepted
		if sr := msg.Body.SuccessResponse; sr != nil {
			for _, m := range sr.Messages {
				resp.Messages = append(resp.Messages, m.Text)
			}
		}
		return resp, nil

	case md.Qualifier == string(QualifierResponse) && md.Function == string(FunctionDelete):
		resp.Outcome = Deleted
		return resp, nil
	}

	return nil, fmt.Errorf("%w: qualifier %q function %q", ErrMalformedResponse,
		md.Qualifier, md.Function)
}
