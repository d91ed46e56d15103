package conf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// The built-in wire format. A configuration tree serializes as
//
//	<configuration>
//	  <var name="top" value="1"/>
//	  <section name="ui">
//	    <var name="theme" value="dark"/>
//	  </section>
//	</configuration>
//
// It is selected whenever no reader or writer factory is configured.

const (
	xmlRootElement    = "configuration"
	xmlSectionElement = "section"
	xmlVarElement     = "var"
	xmlNameAttr       = "name"
	xmlValueAttr      = "value"
)

// XMLWriter formats build events as the built-in XML format.
type XMLWriter struct {
	enc *xml.Encoder
}

// NewXMLWriter creates a writer for the built-in XML format.
func NewXMLWriter() *XMLWriter {
	return &XMLWriter{}
}

// SetOutput directs the writer's output to w.
func (x *XMLWriter) SetOutput(w io.Writer) {
	x.enc = xml.NewEncoder(w)
	x.enc.Indent("", "  ")
}

// StartConfiguration opens the root element.
func (x *XMLWriter) StartConfiguration() error {
	return x.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: xmlRootElement}})
}

// EndConfiguration closes the root element and flushes the output.
func (x *XMLWriter) EndConfiguration() error {
	if err := x.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: xmlRootElement}}); err != nil {
		return err
	}
	return x.enc.Flush()
}

// StartSection opens a section element.
func (x *XMLWriter) StartSection(name string) error {
	return x.enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: xmlSectionElement},
		Attr: []xml.Attr{{Name: xml.Name{Local: xmlNameAttr}, Value: name}},
	})
}

// EndSection closes the current section element.
func (x *XMLWriter) EndSection(string) error {
	return x.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: xmlSectionElement}})
}

// AddVariable emits a variable element.
func (x *XMLWriter) AddVariable(name, value string) error {
	start := xml.StartElement{
		Name: xml.Name{Local: xmlVarElement},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: xmlNameAttr}, Value: name},
			{Name: xml.Name{Local: xmlValueAttr}, Value: value},
		},
	}
	if err := x.enc.EncodeToken(start); err != nil {
		return err
	}
	return x.enc.EncodeToken(xml.EndElement{Name: start.Name})
}

// XMLReader parses the built-in XML format and replays it on a Builder.
type XMLReader struct{}

// NewXMLReader creates a reader for the built-in XML format.
func NewXMLReader() *XMLReader {
	return &XMLReader{}
}

// Read decodes the stream and drives the builder. Builder errors and
// decoding errors abort the read.
func (x *XMLReader) Read(r io.Reader, b Builder) error {
	dec := xml.NewDecoder(r)

	started := false
	var open []string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if started {
				return fmt.Errorf("parsing configuration: unexpected end of stream")
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("parsing configuration: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case xmlRootElement:
				if started {
					return fmt.Errorf("parsing configuration: nested %s element", xmlRootElement)
				}
				started = true
				if err := b.StartConfiguration(); err != nil {
					return err
				}
			case xmlSectionElement:
				if !started {
					return fmt.Errorf("parsing configuration: %s outside %s", xmlSectionElement, xmlRootElement)
				}
				name, ok := attr(t, xmlNameAttr)
				if !ok {
					return fmt.Errorf("parsing configuration: %s element without a name", xmlSectionElement)
				}
				open = append(open, name)
				if err := b.StartSection(name); err != nil {
					return err
				}
			case xmlVarElement:
				if !started {
					return fmt.Errorf("parsing configuration: %s outside %s", xmlVarElement, xmlRootElement)
				}
				name, ok := attr(t, xmlNameAttr)
				if !ok {
					return fmt.Errorf("parsing configuration: %s element without a name", xmlVarElement)
				}
				value, _ := attr(t, xmlValueAttr)
				if err := b.AddVariable(name, value); err != nil {
					return err
				}
				if err := dec.Skip(); err != nil {
					return fmt.Errorf("parsing configuration: %w", err)
				}
			default:
				return fmt.Errorf("parsing configuration: unexpected element %q", t.Name.Local)
			}

		case xml.CharData:
			if !started && len(bytes.TrimSpace(t)) > 0 {
				return fmt.Errorf("parsing configuration: text outside %s element", xmlRootElement)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case xmlRootElement:
				return b.EndConfiguration()
			case xmlSectionElement:
				if len(open) == 0 {
					return fmt.Errorf("parsing configuration: unbalanced %s element", xmlSectionElement)
				}
				name := open[len(open)-1]
				open = open[:len(open)-1]
				if err := b.EndSection(name); err != nil {
					return err
				}
			}
		}
	}
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
