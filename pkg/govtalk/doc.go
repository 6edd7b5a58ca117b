/*
Package govtalk provides the GovTalk message envelope model: construction of
outbound request, poll and delete messages, and classification of inbound
gateway responses.

# Message Structure

Every GovTalk message is an XML document in the
http://www.govtalk.gov.uk/CM/envelope namespace:

	<GovTalkMessage>
	  <EnvelopeVersion>2.0</EnvelopeVersion>
	  <Header>
	    <MessageDetails>   class, qualifier, function, transaction/correlation IDs
	    <SenderDetails>    sender ID and clear-text authentication
	  </Header>
	  <GovTalkDetails>     keys, target organisation, channel routing, errors
	  <Body>               IRenvelope payload for request qualifiers
	</GovTalkMessage>

Outbound messages are built as etree documents so that the IRmark digest can
be inserted into the exact byte stream that is transmitted; serializing the
document after insertion is the only serialization that ever happens.

# Classification

Parse decodes raw response bytes and assigns exactly one outcome from
{Pending, Accepted, Rejected, Deleted}; anything that fails to parse or
matches no classification rule is reported as ErrMalformedResponse. Gateway
error texts are carried verbatim, never summarized.
*/
package govtalk
