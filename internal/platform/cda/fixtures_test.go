package cda

// Test fixtures modelled on patient summaries observed from different member
// states: a fully-populated document, a minimal one, and shape variants the
// engine must tolerate.

const allergyDocument = `<?xml version="1.0" encoding="UTF-8"?>
<ClinicalDocument xmlns="urn:hl7-org:v3">
  <id root="2.16.840.1.113883.2.9.2.120" extension="DOC-0001"/>
  <code code="60591-5" codeSystem="2.16.840.1.113883.6.1" displayName="Patient Summary"/>
  <title>Patient Summary</title>
  <effectiveTime value="20240115103000"/>
  <languageCode code="it-IT"/>
  <recordTarget>
    <patientRole>
      <id extension="RSSMRA82A01H501U" root="2.16.840.1.113883.2.9.4.3.2" assigningAuthorityName="Ministero Economia e Finanze"/>
      <patient>
        <name><given>Mario</given><family>Rossi</family></name>
        <administrativeGenderCode code="M" codeSystem="2.16.840.1.113883.5.1"/>
        <birthTime value="19820508"/>
      </patient>
    </patientRole>
  </recordTarget>
  <author>
    <assignedAuthor>
      <assignedPerson><name><given>Anna</given><family>Bianchi</family></name></assignedPerson>
      <representedOrganization><name>Ospedale San Raffaele</name></representedOrganization>
    </assignedAuthor>
  </author>
  <custodian>
    <assignedCustodian>
      <representedCustodianOrganization>
        <name>Regione Lombardia</name>
      </representedCustodianOrganization>
    </assignedCustodian>
  </custodian>
  <legalAuthenticator>
    <assignedEntity>
      <assignedPerson><name><given>Legale</given><family>Autenticatore</family></name></assignedPerson>
      <representedOrganization><name>Pasquale Pironti</name></representedOrganization>
    </assignedEntity>
  </legalAuthenticator>
  <component>
    <structuredBody>
      <component>
        <section>
          <code code="48765-2" codeSystem="2.16.840.1.113883.6.1"/>
          <title>Allergies and adverse reactions</title>
          <text>Allergic disposition</text>
          <entry>
            <observation classCode="OBS" moodCode="EVN">
              <code code="609328004" codeSystem="2.16.840.1.113883.6.96" displayName="Allergic disposition"/>
            </observation>
          </entry>
        </section>
      </component>
    </structuredBody>
  </component>
</ClinicalDocument>`

const fullDocument = `<?xml version="1.0" encoding="UTF-8"?>
<ClinicalDocument xmlns="urn:hl7-org:v3">
  <id root="1.3.6.1.4.1.12559" extension="PS-PT-42"/>
  <title>Resumo Clinico</title>
  <effectiveTime value="20230930"/>
  <languageCode code="pt-PT"/>
  <recordTarget>
    <patientRole>
      <id extension="123456789" root="2.16.17.710.780.1000.990.1"/>
      <id extension="SNS-987" root="2.16.17.710.780.1000.990.2"/>
      <addr use="WP">
        <streetAddressLine>Rua do Trabalho 10</streetAddressLine>
        <city>Porto</city>
        <postalCode>4000-001</postalCode>
        <country>PT</country>
      </addr>
      <addr use="H">
        <streetAddressLine>Rua das Flores 1</streetAddressLine>
        <city>Lisboa</city>
        <postalCode>1100-001</postalCode>
        <country>PT</country>
      </addr>
      <telecom use="WP" value="tel:+351210000000"/>
      <telecom use="H" value="mailto:maria@example.pt"/>
      <patient>
        <name><given>Maria</given><family>Santos</family></name>
        <administrativeGenderCode code="F" codeSystem="2.16.840.1.113883.5.1" displayName="feminino"/>
        <birthTime value="1982-05-08"/>
        <maritalStatusCode code="M" codeSystem="2.16.840.1.113883.5.2" displayName="Married"/>
        <guardian>
          <addr use="H"><city>Lisboa</city><country>PT</country></addr>
          <telecom value="tel:+351910000001"/>
          <guardianPerson><name><given>Joana</given><family>Santos</family></name></guardianPerson>
        </guardian>
      </patient>
    </patientRole>
  </recordTarget>
  <author>
    <assignedAuthor>
      <assignedAuthoringDevice><softwareName>PS Generator</softwareName></assignedAuthoringDevice>
    </assignedAuthor>
  </author>
  <author>
    <assignedAuthor>
      <code code="221" codeSystem="2.16.840.1.113883.2.9.6.1.5" displayName="Medici di medicina generale"/>
      <telecom value="tel:+351220000000"/>
      <assignedPerson><name><prefix>Dr.</prefix><given>Carlos</given><family>Ferreira</family></name></assignedPerson>
      <representedOrganization>
        <name>Centro de Saude Norte</name>
        <addr><city>Porto</city><country>PT</country></addr>
      </representedOrganization>
    </assignedAuthor>
  </author>
  <custodian>
    <assignedCustodian>
      <representedCustodianOrganization>
        <name>SPMS</name>
        <telecom value="http://spms.min-saude.pt"/>
        <addr><city>Lisboa</city><country>PT</country></addr>
      </representedCustodianOrganization>
    </assignedCustodian>
  </custodian>
  <legalAuthenticator>
    <assignedEntity>
      <assignedPerson><name><given>Ana</given><family>Lopes</family></name></assignedPerson>
      <representedOrganization><name>Hospital de Santa Maria</name></representedOrganization>
    </assignedEntity>
  </legalAuthenticator>
  <participant typeCode="IND">
    <functionCode code="PCP" codeSystem="2.16.840.1.113883.5.88"/>
    <associatedEntity classCode="PROV">
      <addr use="WP"><city>Lisboa</city><country>PT</country></addr>
      <telecom value="tel:+351213334444" use="WP"/>
      <associatedPerson><name><given>Rui</given><family>Pereira</family></name></associatedPerson>
      <scopingOrganization><name>USF Alfama</name><telecom value="tel:+351215556666"/></scopingOrganization>
    </associatedEntity>
  </participant>
  <participant typeCode="IND">
    <associatedEntity classCode="ECON">
      <code code="FAMMEMB" codeSystem="2.16.840.1.113883.5.111"/>
      <telecom value="tel:+351919998888"/>
      <associatedPerson><name><given>Pedro</given><family>Santos</family></name></associatedPerson>
    </associatedEntity>
  </participant>
  <component>
    <structuredBody>
      <component>
        <section ID="sect-allergies">
          <templateId root="1.3.6.1.4.1.12559.11.10.1.3.1.2.1"/>
          <code code="48765-2" codeSystem="2.16.840.1.113883.6.1"/>
          <title>Alergias</title>
          <text>Penicillin allergy <content ID="allergy-1">severe rash</content></text>
          <entry>
            <act classCode="ACT" moodCode="EVN">
              <code code="CONC" codeSystem="2.16.840.1.113883.5.6"/>
              <entryRelationship typeCode="SUBJ">
                <observation classCode="OBS" moodCode="EVN">
                  <code code="609328004" codeSystem="2.16.840.1.113883.6.96"/>
                  <value code="373270004" codeSystem="2.16.840.1.113883.6.96" displayName="Penicillin">
                    <originalText><reference value="#allergy-1"/></originalText>
                  </value>
                  <participant typeCode="CSM">
                    <participantRole classCode="MANU">
                      <playingEntity classCode="MMAT">
                        <code code="N0000011281" codeSystem="2.16.840.1.113883.3.26.1.5"/>
                      </playingEntity>
                    </participantRole>
                  </participant>
                </observation>
              </entryRelationship>
            </act>
          </entry>
        </section>
      </component>
      <component>
        <section>
          <code code="10160-0" codeSystem="2.16.840.1.113883.6.1"/>
          <title>Medicacao</title>
          <text>Metformin 500mg twice daily</text>
          <entry>
            <substanceAdministration classCode="SBADM" moodCode="EVN">
              <routeCode code="20053000" codeSystem="0.4.0.127.0.16.1.1.2.1" displayName="Oral use"/>
              <consumable>
                <manufacturedProduct>
                  <manufacturedMaterial>
                    <code code="A10BA02" codeSystem="2.16.840.1.113883.6.73" displayName="Metformin"/>
                    <formCode code="10219000" codeSystem="0.4.0.127.0.16.1.1.2.1" displayName="Tablet"/>
                  </manufacturedMaterial>
                </manufacturedProduct>
              </consumable>
            </substanceAdministration>
          </entry>
        </section>
      </component>
      <component>
        <section>
          <code code="30954-2" codeSystem="2.16.840.1.113883.6.1"/>
          <title>Resultados</title>
          <text>Glucose panel</text>
          <entry>
            <organizer classCode="BATTERY" moodCode="EVN">
              <code code="24323-8" codeSystem="2.16.840.1.113883.6.1"/>
              <component>
                <observation classCode="OBS" moodCode="EVN">
                  <code code="2345-7" codeSystem="2.16.840.1.113883.6.1" displayName="Glucose"/>
                  <value value="5.4" unit="mmol/L"/>
                </observation>
              </component>
            </organizer>
          </entry>
        </section>
      </component>
      <component>
        <section>
          <code code="47519-4" codeSystem="2.16.840.1.113883.6.1"/>
          <title>Procedimentos</title>
          <text></text>
          <entry>
            <procedure classCode="PROC" moodCode="EVN">
              <code code="80146002" codeSystem="2.16.840.1.113883.6.96" displayName="Appendectomy"/>
            </procedure>
          </entry>
        </section>
      </component>
    </structuredBody>
  </component>
</ClinicalDocument>`

const minimalDocument = `<?xml version="1.0" encoding="UTF-8"?>
<ClinicalDocument xmlns="urn:hl7-org:v3">
  <title>Empty Summary</title>
  <recordTarget>
    <patientRole>
      <id extension="X1" root="1.2.3"/>
    </patientRole>
  </recordTarget>
</ClinicalDocument>`

// unprefixedDocument omits the default namespace declaration, a fragment
// shape some member states emit. The walker must still match elements.
const unprefixedDocument = `<?xml version="1.0" encoding="UTF-8"?>
<ClinicalDocument>
  <title>No Namespace</title>
  <component>
    <structuredBody>
      <component>
        <section>
          <title>Diagnoses</title>
          <text>Hypertension</text>
          <entry>
            <observation>
              <code code="38341003" codeSystem="2.16.840.1.113883.6.96"/>
            </observation>
          </entry>
        </section>
      </component>
    </structuredBody>
  </component>
</ClinicalDocument>`
